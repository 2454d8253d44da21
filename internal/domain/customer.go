package domain

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Customer son los datos de envío que viajan embebidos en la orden.
type Customer struct {
	Name       string `gorm:"size:140" json:"name"`
	Email      string `gorm:"size:140;index" json:"email"`
	Phone      string `gorm:"size:60" json:"phone"`
	Address    string `gorm:"size:255" json:"address"`
	City       string `gorm:"size:120" json:"city"`
	Province   string `gorm:"size:80" json:"province"`
	PostalCode string `gorm:"size:20" json:"postalCode,omitempty"`
}

func (c *Customer) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.City = strings.TrimSpace(c.City)
	c.Province = strings.TrimSpace(c.Province)
	c.PostalCode = strings.TrimSpace(c.PostalCode)
}

func (c *Customer) Validate() error {
	required := []struct {
		field, value, msg string
	}{
		{"customer.name", c.Name, "El nombre es requerido"},
		{"customer.email", c.Email, "El email es requerido"},
		{"customer.phone", c.Phone, "El teléfono es requerido"},
		{"customer.address", c.Address, "La dirección es requerida"},
		{"customer.city", c.City, "La ciudad es requerida"},
		{"customer.province", c.Province, "La provincia es requerida"},
	}
	for _, r := range required {
		if r.value == "" {
			return Invalid(r.field, r.msg)
		}
	}
	if !emailRe.MatchString(c.Email) {
		return Invalid("customer.email", "Email inválido")
	}
	return nil
}
