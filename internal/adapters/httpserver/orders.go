package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/marina/internal/adapters/export/xlsx"
	"github.com/phenrril/marina/internal/domain"
	"github.com/phenrril/marina/internal/usecase"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type orderResponse struct {
	*domain.Order
	WhatsAppURL string `json:"whatsappUrl,omitempty"`
}

func (s *Server) orderResponse(r *http.Request, o *domain.Order) orderResponse {
	return orderResponse{Order: o, WhatsAppURL: domain.OrderWhatsAppLink(s.settings.WhatsAppNumber(r.Context()), o)}
}

// apiOrderCreate es público; la notificación no afecta la respuesta.
func (s *Server) apiOrderCreate(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateOrderInput
	if !decodeJSON(w, r, &in) {
		return
	}
	o, err := s.orders.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.orderResponse(r, o))
}

type orderQuery struct {
	Status string `schema:"status"`
}

func (s *Server) listOrders(r *http.Request) ([]domain.Order, error) {
	var q orderQuery
	if err := s.query.Decode(&q, r.URL.Query()); err != nil {
		return nil, domain.Invalid("status", "parámetros inválidos")
	}
	return s.orders.List(r.Context(), q.Status)
}

func (s *Server) apiOrders(w http.ResponseWriter, r *http.Request) {
	list, err := s.listOrders(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) apiOrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Order: o, WhatsAppURL: domain.CustomerWhatsAppLink(o)})
}

func (s *Server) apiOrderUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in usecase.UpdateOrderInput
	if !decodeJSON(w, r, &in) {
		return
	}
	o, err := s.orders.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Info().Str("order", o.Number).Str("status", string(o.Status)).Str("admin", adminFrom(r.Context()).Email).Msg("orden actualizada")
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) apiOrderDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.orders.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Orden eliminada"})
}

func (s *Server) apiOrdersExport(w http.ResponseWriter, r *http.Request) {
	list, err := s.listOrders(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="pedidos-%s.xlsx"`, time.Now().Format("20060102")))
	if err := xlsx.WriteOrders(w, list); err != nil {
		log.Error().Err(err).Msg("export pedidos")
	}
}
