package notify

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"

	"github.com/phenrril/marina/internal/domain"
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer manda el aviso de pedido nuevo por SMTP.
type Mailer struct {
	dialer sender
	from   string
	to     string
}

func NewMailer(host string, port int, user, pass, from, to string) *Mailer {
	if from == "" {
		from = user
	}
	return &Mailer{dialer: gomail.NewDialer(host, port, user, pass), from: from, to: to}
}

var orderEmailTmpl = template.Must(template.New("order").Funcs(template.FuncMap{
	"money": func(v decimal.Decimal) string { return v.StringFixed(2) },
}).Parse(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; background-color: #f9fafb; margin: 0; padding: 0;">
<div style="max-width: 600px; margin: 0 auto; background-color: #ffffff;">
  <div style="background: linear-gradient(135deg, #ec4899 0%, #8b5cf6 100%); padding: 30px 20px; text-align: center;">
    <h1 style="margin: 0; color: #ffffff;">Nuevo Pedido</h1>
    <p style="margin: 10px 0 0 0; color: #ffffff; font-size: 20px; font-weight: bold;">#{{.Order.Number}}</p>
  </div>
  <div style="padding: 30px 20px; border-bottom: 1px solid #e5e7eb;">
    <h3 style="margin: 0 0 15px 0;">Datos del Cliente</h3>
    <table style="width: 100%;">
      <tr><td style="color: #6b7280; width: 120px;">Nombre:</td><td><strong>{{.Order.Customer.Name}}</strong></td></tr>
      <tr><td style="color: #6b7280;">Email:</td><td>{{.Order.Customer.Email}}</td></tr>
      <tr><td style="color: #6b7280;">Teléfono:</td><td>{{.Order.Customer.Phone}}</td></tr>
      <tr><td style="color: #6b7280;">Dirección:</td><td>{{.Order.Customer.Address}}, {{.Order.Customer.City}}, {{.Order.Customer.Province}}{{with .Order.Customer.PostalCode}} ({{.}}){{end}}</td></tr>
    </table>
  </div>
  <div style="padding: 30px 20px;">
    <h3 style="margin: 0 0 20px 0;">Productos</h3>
    <table style="width: 100%; border-collapse: collapse;">
      <tr style="background-color: #f9fafb;"><th style="text-align: left;">Producto</th><th>Cantidad</th><th style="text-align: right;">Precio</th></tr>
      {{range .Order.Items}}<tr>
        <td style="padding: 12px; border-bottom: 1px solid #e5e7eb;"><strong>{{.ProductName}}</strong><br><span style="color: #6b7280; font-size: 14px;">Talla: {{.Size}}</span></td>
        <td style="padding: 12px; border-bottom: 1px solid #e5e7eb; text-align: center;">{{.Quantity}}</td>
        <td style="padding: 12px; border-bottom: 1px solid #e5e7eb; text-align: right;">${{money .Price}}</td>
      </tr>{{end}}
    </table>
  </div>
  {{with .Order.Notes}}<div style="padding: 0 20px 20px 20px; color: #374151;">Notas: {{.}}</div>{{end}}
  <div style="padding: 20px; background-color: #fdf2f8;">
    <p style="margin: 0; color: #6b7280; font-size: 18px;">Total:</p>
    <p style="margin: 0; color: #ec4899; font-size: 32px; font-weight: bold;">${{money .Order.TotalAmount}}</p>
  </div>
  {{if .WhatsApp}}<div style="padding: 30px 20px; text-align: center;">
    <a href="{{.WhatsApp}}" style="display: inline-block; background: #25D366; color: #ffffff; text-decoration: none; padding: 15px 40px; border-radius: 8px; font-weight: bold;">Contactar Cliente por WhatsApp</a>
  </div>{{end}}
  <div style="background-color: #111827; padding: 30px 20px; text-align: center;">
    <p style="margin: 0; color: #9ca3af; font-size: 14px;">© {{.Year}} Marina Bikinis Autora</p>
  </div>
</div>
</body></html>`))

func renderOrderEmail(o *domain.Order) (string, error) {
	var buf bytes.Buffer
	err := orderEmailTmpl.Execute(&buf, map[string]any{
		"Order":    o,
		"WhatsApp": template.URL(domain.CustomerWhatsAppLink(o)),
		"Year":     time.Now().Year(),
	})
	return buf.String(), err
}

func (m *Mailer) NotifyOrder(ctx context.Context, o *domain.Order) error {
	if m.to == "" {
		return errors.New("ORDER_NOTIFY_EMAIL faltante")
	}
	body, err := renderOrderEmail(o)
	if err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	if o.Customer.Email != "" {
		msg.SetHeader("Reply-To", o.Customer.Email)
	}
	msg.SetHeader("Subject", "Nuevo Pedido #"+o.Number)
	msg.SetBody("text/html", body)

	// gomail no acepta contexto; respetamos el deadline corriendo en otra goroutine
	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mailer) String() string { return "email" }
