package httpserver

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/marina/internal/domain"
)

func (s *Server) apiSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.settings.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// apiSettingsUpdate pisa la configuración completa. Si el cuerpo trae
// version se usa como control de concurrencia.
func (s *Server) apiSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var body domain.Settings
	if !decodeJSON(w, r, &body) {
		return
	}
	expected := body.Version
	saved, err := s.settings.Update(r.Context(), &body, expected)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Info().Int64("version", saved.Version).Str("admin", adminFrom(r.Context()).Email).Msg("configuración guardada")
	writeJSON(w, http.StatusOK, saved)
}
