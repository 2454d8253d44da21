package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/phenrril/marina/internal/domain"
)

// Telegram avisa el pedido a uno o varios chats con el bot de la tienda.
type Telegram struct {
	apiBase    string
	token      string
	chatIDs    []string
	httpClient *http.Client
}

func NewTelegram(token string, chatIDs []string) *Telegram {
	return &Telegram{apiBase: "https://api.telegram.org", token: token, chatIDs: chatIDs, httpClient: http.DefaultClient}
}

// WithAPIBase cambia el host del bot (tests).
func (t *Telegram) WithAPIBase(base string) *Telegram {
	t.apiBase = strings.TrimRight(base, "/")
	return t
}

func orderText(o *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pedido %s - %s\n", o.Number, o.Status)
	fmt.Fprintf(&b, "Nombre: %s\nEmail: %s\nTel: %s\n", o.Customer.Name, o.Customer.Email, o.Customer.Phone)
	fmt.Fprintf(&b, "Envío a: %s, %s, %s", o.Customer.Address, o.Customer.City, o.Customer.Province)
	if o.Customer.PostalCode != "" {
		fmt.Fprintf(&b, " CP:%s", o.Customer.PostalCode)
	}
	b.WriteString("\nItems:\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s x%d — $%s  Talle: %s\n", it.ProductName, it.Quantity, it.Price.StringFixed(2), it.Size)
	}
	fmt.Fprintf(&b, "Total: $%s\n", o.TotalAmount.StringFixed(2))
	if o.Notes != "" {
		fmt.Fprintf(&b, "Notas: %s\n", o.Notes)
	}
	if link := domain.CustomerWhatsAppLink(o); link != "" {
		b.WriteString("WhatsApp: " + link + "\n")
	}
	return b.String()
}

func (t *Telegram) NotifyOrder(ctx context.Context, o *domain.Order) error {
	if t.token == "" || len(t.chatIDs) == 0 {
		return fmt.Errorf("telegram vars faltantes")
	}
	apiURL := t.apiBase + "/bot" + t.token + "/sendMessage"
	text := orderText(o)
	var lastErr error
	for _, id := range t.chatIDs {
		form := url.Values{}
		form.Set("chat_id", id)
		form.Set("text", text)
		form.Set("disable_web_page_preview", "1")
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := t.httpClient.Do(req)
		if err != nil {
			lastErr = t.redact(err)
			continue
		}
		func() {
			defer resp.Body.Close()
			if resp.StatusCode >= 300 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				lastErr = fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(body))
			}
		}()
	}
	return lastErr
}

// redact saca la URL del error de transporte; lleva el token del bot.
func (t *Telegram) redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = fmt.Errorf("telegram %s: %w", strings.ToLower(ue.Op), ue.Err)
	}
	if msg := err.Error(); strings.Contains(msg, t.token) {
		return errors.New(strings.ReplaceAll(msg, t.token, "<token>"))
	}
	return err
}

func (t *Telegram) String() string { return "telegram" }
