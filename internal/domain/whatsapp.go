package domain

import (
	"fmt"
	"net/url"
	"strings"
)

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func waLink(number, text string) string {
	u := "https://wa.me/" + digitsOnly(number)
	if text != "" {
		u += "?text=" + url.QueryEscape(text)
	}
	return u
}

// OrderWhatsAppLink abre el chat con la tienda con el resumen del pedido.
func OrderWhatsAppLink(storeNumber string, o *Order) string {
	if o == nil || digitsOnly(storeNumber) == "" {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hola! Consulto por el pedido %s\n", o.Number)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s (%s) x%d\n", it.ProductName, it.Size, it.Quantity)
	}
	fmt.Fprintf(&b, "Total: $%s", o.TotalAmount.StringFixed(2))
	return waLink(storeNumber, b.String())
}

// CustomerWhatsAppLink es el link que usa el admin para escribirle al cliente.
func CustomerWhatsAppLink(o *Order) string {
	if o == nil || digitsOnly(o.Customer.Phone) == "" {
		return ""
	}
	return waLink(o.Customer.Phone, fmt.Sprintf("Hola %s! Te contacto por tu pedido #%s", o.Customer.Name, o.Number))
}
