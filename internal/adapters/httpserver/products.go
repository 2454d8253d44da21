package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/marina/internal/domain"
)

type productQuery struct {
	ActiveOnly bool   `schema:"activeOnly"`
	ID         string `schema:"id"`
}

// productRequest es el cuerpo de alta y edición; active ausente vale true.
type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	Category    string          `json:"category"`
	Style       string          `json:"style"`
	Pattern     string          `json:"pattern"`
	Stitching   string          `json:"stitching"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
	Stock       int             `json:"stock"`
	Active      *bool           `json:"active"`
}

func (req productRequest) toProduct() *domain.Product {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Images:      req.Images,
		Category:    domain.Category(req.Category),
		Style:       req.Style,
		Pattern:     req.Pattern,
		Stitching:   req.Stitching,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		Stock:       req.Stock,
		Active:      active,
	}
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	var q productQuery
	if err := s.query.Decode(&q, r.URL.Query()); err != nil {
		badRequest(w, "parámetros inválidos")
		return
	}
	if q.ID != "" {
		id, err := uuid.Parse(q.ID)
		if err != nil {
			writeError(w, r, domain.Invalid("id", "ID inválido"))
			return
		}
		s.writeProduct(w, r, id)
		return
	}
	list, err := s.products.List(r.Context(), q.ActiveOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) apiProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeProduct(w, r, id)
}

func (s *Server) writeProduct(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	p, err := s.products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) apiProductCreate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := req.toProduct()
	if err := s.products.Create(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) apiProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := req.toProduct()
	if err := s.products.Update(r.Context(), id, p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) apiProductDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.products.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Producto eliminado"})
}

func (s *Server) apiProductsReorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductIDs []uuid.UUID `json:"productIds"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := s.products.Reorder(r.Context(), req.ProductIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": n})
}
