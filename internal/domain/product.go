package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// precios como número en el JSON, no como string
	decimal.MarshalJSONWithoutQuotes = true
}

type Category string

const (
	CategoryBikini    Category = "bikini"
	CategoryEnteriza  Category = "enteriza"
	CategoryTankini   Category = "tankini"
	CategoryPareo     Category = "pareo"
	CategoryAccesorio Category = "accesorio"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryBikini, CategoryEnteriza, CategoryTankini, CategoryPareo, CategoryAccesorio:
		return true
	}
	return false
}

var DefaultSizes = []string{"S", "M", "L", "XL"}

type Product struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string          `gorm:"size:180;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Images       []string        `gorm:"type:jsonb;serializer:json" json:"images"`
	Category     Category        `gorm:"type:varchar(20);index" json:"category"`
	Style        string          `gorm:"size:120" json:"style,omitempty"`
	Pattern      string          `gorm:"size:120" json:"pattern,omitempty"`
	Stitching    string          `gorm:"size:120" json:"stitching,omitempty"`
	Sizes        []string        `gorm:"type:jsonb;serializer:json" json:"sizes"`
	Colors       []string        `gorm:"type:jsonb;serializer:json" json:"colors"`
	Stock        int             `gorm:"not null" json:"stock"`
	DisplayOrder int             `gorm:"column:display_order;index" json:"order"`
	Active       bool            `gorm:"not null;index" json:"active"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type ProductFilter struct {
	ActiveOnly bool
}

// Normalize recorta espacios y completa talles por defecto.
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Style = strings.TrimSpace(p.Style)
	p.Pattern = strings.TrimSpace(p.Pattern)
	p.Stitching = strings.TrimSpace(p.Stitching)
	p.Category = Category(strings.ToLower(strings.TrimSpace(string(p.Category))))
	p.Images = compact(p.Images)
	p.Sizes = compact(p.Sizes)
	for i := range p.Sizes {
		p.Sizes[i] = strings.ToUpper(p.Sizes[i])
	}
	if len(p.Sizes) == 0 {
		p.Sizes = append([]string(nil), DefaultSizes...)
	}
	p.Colors = compact(p.Colors)
}

func (p *Product) Validate() error {
	if p.Name == "" {
		return Invalid("name", "El nombre es requerido")
	}
	if p.Description == "" {
		return Invalid("description", "La descripción es requerida")
	}
	if p.Price.IsNegative() {
		return Invalid("price", "El precio no puede ser negativo")
	}
	if len(p.Images) == 0 {
		return Invalid("images", "Debe haber al menos una imagen")
	}
	if !p.Category.Valid() {
		return Invalid("category", "Categoría inválida")
	}
	if p.Stock < 0 {
		return Invalid("stock", "El stock no puede ser negativo")
	}
	return nil
}

func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if strings.EqualFold(s, size) {
			return true
		}
	}
	return false
}

// MainImage devuelve la primera imagen o vacío.
func (p *Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
