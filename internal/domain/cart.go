package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem se identifica por (producto, talle).
type CartItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

// MaxCartLines acota las líneas distintas para que la cookie entre en 4 KB.
const MaxCartLines = 30

// CartLine es lo que el cliente guarda del carrito; el resto sale del catálogo.
type CartLine struct {
	ProductID uuid.UUID `json:"p"`
	Size      string    `json:"s"`
	Quantity  int       `json:"q"`
}

func (c Cart) Lines() []CartLine {
	out := make([]CartLine, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, CartLine{ProductID: it.ProductID, Size: it.Size, Quantity: it.Quantity})
	}
	return out
}

// RestoreCart arma el carrito con nombre, precio e imagen vigentes. Las
// líneas de productos que no están en catalog se descartan.
func RestoreCart(lines []CartLine, catalog map[uuid.UUID]Product) Cart {
	var c Cart
	for _, l := range lines {
		p, ok := catalog[l.ProductID]
		if !ok || l.Quantity < 1 || l.Size == "" {
			continue
		}
		if i := c.indexOf(l.ProductID, l.Size); i >= 0 {
			c.Items[i].Quantity += l.Quantity
			continue
		}
		if len(c.Items) == MaxCartLines {
			break
		}
		c.Items = append(c.Items, CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.MainImage(),
			Size:      l.Size,
			Quantity:  l.Quantity,
		})
	}
	return c
}

func (c Cart) Has(productID uuid.UUID, size string) bool {
	return c.indexOf(productID, size) >= 0
}

func (c *Cart) indexOf(productID uuid.UUID, size string) int {
	for i, it := range c.Items {
		if it.ProductID == productID && strings.EqualFold(it.Size, size) {
			return i
		}
	}
	return -1
}

// Add suma una unidad si la línea ya existe, si no la agrega con cantidad 1.
func (c *Cart) Add(p Product, size string) {
	if i := c.indexOf(p.ID, size); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	c.Items = append(c.Items, CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.MainImage(),
		Size:      size,
		Quantity:  1,
	})
}

// UpdateQuantity con cantidad <= 0 elimina la línea.
func (c *Cart) UpdateQuantity(productID uuid.UUID, size string, qty int) {
	if qty <= 0 {
		c.Remove(productID, size)
		return
	}
	if i := c.indexOf(productID, size); i >= 0 {
		c.Items[i].Quantity = qty
	}
}

func (c *Cart) Remove(productID uuid.UUID, size string) {
	if i := c.indexOf(productID, size); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
