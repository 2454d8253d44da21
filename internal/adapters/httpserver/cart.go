package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/marina/internal/domain"
	"github.com/phenrril/marina/internal/usecase"
)

const cartCookie = "cart"

// readCart devuelve las líneas de la cookie; si falta o fue alterada, ninguna.
func (s *Server) readCart(r *http.Request) []domain.CartLine {
	c, err := r.Cookie(cartCookie)
	if err != nil {
		return nil
	}
	parts := strings.SplitN(c.Value, ".", 2)
	if len(parts) != 2 {
		return nil
	}
	sig, _ := base64.RawURLEncoding.DecodeString(parts[0])
	payload, _ := base64.RawURLEncoding.DecodeString(parts[1])
	h := hmac.New(sha256.New, s.sessionKey)
	h.Write(payload)
	if !hmac.Equal(sig, h.Sum(nil)) {
		return nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(payload, &lines); err != nil {
		return nil
	}
	return lines
}

// loadCart rearma el carrito de la cookie con los datos actuales del catálogo.
func (s *Server) loadCart(r *http.Request) (domain.Cart, error) {
	lines := s.readCart(r)
	if len(lines) == 0 {
		return domain.Cart{}, nil
	}
	active, err := s.products.List(r.Context(), true)
	if err != nil {
		return domain.Cart{}, err
	}
	catalog := make(map[uuid.UUID]domain.Product, len(active))
	for _, p := range active {
		catalog[p.ID] = p
	}
	return domain.RestoreCart(lines, catalog), nil
}

func (s *Server) writeCart(w http.ResponseWriter, r *http.Request, cart domain.Cart) {
	if len(cart.Items) == 0 {
		http.SetCookie(w, &http.Cookie{Name: cartCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: isSecure(r), SameSite: http.SameSiteLaxMode})
		return
	}
	b, _ := json.Marshal(cart.Lines())
	h := hmac.New(sha256.New, s.sessionKey)
	h.Write(b)
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	val := sig + "." + base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{Name: cartCookie, Value: val, Path: "/", MaxAge: 60 * 60 * 24 * 7, HttpOnly: true, Secure: isSecure(r), SameSite: http.SameSiteLaxMode})
}

type cartView struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
}

func viewOf(c domain.Cart) cartView {
	items := c.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return cartView{Items: items, TotalItems: c.TotalItems(), TotalPrice: c.TotalPrice()}
}

type cartLineReq struct {
	ProductID uuid.UUID `json:"productId"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
}

func (req *cartLineReq) validate() error {
	req.Size = strings.ToUpper(strings.TrimSpace(req.Size))
	if req.ProductID == uuid.Nil {
		return domain.Invalid("productId", "Producto requerido")
	}
	if req.Size == "" {
		return domain.Invalid("size", "El talle es requerido")
	}
	return nil
}

func (s *Server) apiCart(w http.ResponseWriter, r *http.Request) {
	cart, err := s.loadCart(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(cart))
}

func (s *Server) apiCartAdd(w http.ResponseWriter, r *http.Request) {
	var req cartLineReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.products.Get(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !p.Active {
		writeError(w, r, domain.Invalid("productId", "Producto no disponible"))
		return
	}
	if len(p.Sizes) > 0 && !p.HasSize(req.Size) {
		writeError(w, r, domain.Invalid("size", "Talle no disponible"))
		return
	}
	cart, err := s.loadCart(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !cart.Has(p.ID, req.Size) && len(cart.Items) >= domain.MaxCartLines {
		writeError(w, r, domain.Invalid("items", "El carrito está lleno"))
		return
	}
	cart.Add(*p, req.Size)
	s.writeCart(w, r, cart)
	writeJSON(w, http.StatusOK, viewOf(cart))
}

func (s *Server) apiCartUpdate(w http.ResponseWriter, r *http.Request) {
	var req cartLineReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := s.loadCart(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cart.UpdateQuantity(req.ProductID, req.Size, req.Quantity)
	s.writeCart(w, r, cart)
	writeJSON(w, http.StatusOK, viewOf(cart))
}

func (s *Server) apiCartRemove(w http.ResponseWriter, r *http.Request) {
	var req cartLineReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := s.loadCart(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cart.Remove(req.ProductID, req.Size)
	s.writeCart(w, r, cart)
	writeJSON(w, http.StatusOK, viewOf(cart))
}

func (s *Server) apiCartClear(w http.ResponseWriter, r *http.Request) {
	var cart domain.Cart
	cart.Clear()
	s.writeCart(w, r, cart)
	writeJSON(w, http.StatusOK, viewOf(cart))
}

// apiCartCheckout arma el pedido desde la cookie y la vacía si se guardó.
func (s *Server) apiCartCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Customer domain.Customer `json:"customer"`
		Notes    string          `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	cart, err := s.loadCart(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in := usecase.CreateOrderInput{Customer: req.Customer, Notes: req.Notes, TotalAmount: cart.TotalPrice()}
	for _, it := range cart.Items {
		in.Items = append(in.Items, usecase.OrderLine{ProductID: it.ProductID, Size: it.Size, Quantity: it.Quantity})
	}
	o, err := s.orders.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cart.Clear()
	s.writeCart(w, r, cart)
	writeJSON(w, http.StatusCreated, s.orderResponse(r, o))
}
