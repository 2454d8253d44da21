package httpserver

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

func (s *Server) uploadsEnabled(w http.ResponseWriter) bool {
	if s.images == nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Subida de imágenes no configurada"})
		return false
	}
	return true
}

// apiUpload recibe un data URI o una URL y devuelve la imagen alojada.
func (s *Server) apiUpload(w http.ResponseWriter, r *http.Request) {
	if !s.uploadsEnabled(w) {
		return
	}
	var req struct {
		File string `json:"file"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	img, err := s.images.Upload(r.Context(), req.File)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Info().Str("public_id", img.PublicID).Msg("imagen subida")
	writeJSON(w, http.StatusOK, img)
}

func (s *Server) apiUploadDelete(w http.ResponseWriter, r *http.Request) {
	if !s.uploadsEnabled(w) {
		return
	}
	var req struct {
		PublicID string `json:"publicId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.images.Delete(r.Context(), req.PublicID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Imagen eliminada"})
}
