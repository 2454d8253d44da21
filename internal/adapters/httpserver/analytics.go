package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/marina/internal/adapters/export/xlsx"
	"github.com/phenrril/marina/internal/domain"
)

var trackOK = map[string]bool{"success": true}

func (s *Server) apiVisit(w http.ResponseWriter, r *http.Request) {
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		ua = "unknown"
	}
	if err := s.analytics.RecordVisit(r.Context(), s.clientIP(r), ua); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trackOK)
}

type productEventReq struct {
	ProductID uuid.UUID `json:"productId"`
}

func (s *Server) apiClick(w http.ResponseWriter, r *http.Request) {
	var req productEventReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.analytics.RecordClick(r.Context(), req.ProductID, s.clientIP(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trackOK)
}

func (s *Server) apiView(w http.ResponseWriter, r *http.Request) {
	var req productEventReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.analytics.RecordView(r.Context(), req.ProductID, s.clientIP(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trackOK)
}

type statsQuery struct {
	Days int `schema:"days"`
	Page int `schema:"page"`
}

func (s *Server) apiStats(w http.ResponseWriter, r *http.Request) {
	var q statsQuery
	if err := s.query.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, r, domain.Invalid("days", "days y page deben ser números"))
		return
	}
	st, err := s.analytics.Stats(r.Context(), q.Days, q.Page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) apiVisitsExport(w http.ResponseWriter, r *http.Request) {
	var q statsQuery
	if err := s.query.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, r, domain.Invalid("days", "days debe ser un número"))
		return
	}
	visits, err := s.analytics.Visits(r.Context(), q.Days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="visitas-%s.xlsx"`, time.Now().Format("20060102")))
	if err := xlsx.WriteVisits(w, visits); err != nil {
		log.Error().Err(err).Msg("export visitas")
	}
}
