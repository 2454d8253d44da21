package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/phenrril/marina/internal/domain"
)

// OrderDispatcher avisa de una orden nueva sin bloquear al que llama.
type OrderDispatcher interface {
	Dispatch(o *domain.Order)
}

type OrderLine struct {
	ProductID uuid.UUID `json:"productId"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
}

type CreateOrderInput struct {
	Items       []OrderLine     `json:"items"`
	Customer    domain.Customer `json:"customer"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Notes       string          `json:"notes"`
}

type UpdateOrderInput struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

type OrderUC struct {
	Orders   domain.OrderRepo
	Products domain.ProductRepo
	Notifier OrderDispatcher
	Prefix   string
}

func (uc *OrderUC) prefix() string {
	if uc.Prefix == "" {
		return "BK"
	}
	return uc.Prefix
}

// Create valida, vuelve a cotizar contra el catálogo, numera y guarda la orden.
// La notificación sale en segundo plano y nunca hace fallar el pedido.
func (uc *OrderUC) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, domain.Invalid("items", "El pedido debe tener al menos un producto")
	}
	in.Customer.Normalize()
	if err := in.Customer.Validate(); err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	for i, line := range in.Items {
		it, err := uc.priceLine(ctx, i, line)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	o := &domain.Order{
		ID:       uuid.New(),
		Items:    items,
		Customer: in.Customer,
		Status:   domain.OrderStatusPending,
		Notes:    strings.TrimSpace(in.Notes),
	}
	o.TotalAmount = o.ComputeTotal()
	if !in.TotalAmount.IsZero() && !in.TotalAmount.Equal(o.TotalAmount) {
		log.Warn().Str("cliente", in.TotalAmount.String()).Str("servidor", o.TotalAmount.String()).Msg("total del cliente distinto al recalculado")
	}

	seq, err := uc.Orders.NextSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("numerar orden: %w", err)
	}
	o.Number = domain.FormatOrderNumber(uc.prefix(), seq)
	if err := uc.Orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("guardar orden: %w", err)
	}
	log.Info().Str("order", o.Number).Str("total", o.TotalAmount.StringFixed(2)).Int("items", len(o.Items)).Msg("orden creada")

	if uc.Notifier != nil {
		uc.Notifier.Dispatch(o)
	}
	return o, nil
}

func (uc *OrderUC) priceLine(ctx context.Context, i int, line OrderLine) (domain.OrderItem, error) {
	field := fmt.Sprintf("items[%d]", i)
	if line.ProductID == uuid.Nil {
		return domain.OrderItem{}, domain.Invalid(field+".productId", "Producto requerido")
	}
	if line.Quantity < 1 {
		return domain.OrderItem{}, domain.Invalid(field+".quantity", "La cantidad debe ser al menos 1")
	}
	size := strings.ToUpper(strings.TrimSpace(line.Size))
	if size == "" {
		return domain.OrderItem{}, domain.Invalid(field+".size", "El talle es requerido")
	}
	p, err := uc.Products.FindByID(ctx, line.ProductID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.OrderItem{}, domain.Invalid(field+".productId", "Producto no disponible")
	}
	if err != nil {
		return domain.OrderItem{}, err
	}
	if !p.Active {
		return domain.OrderItem{}, domain.Invalid(field+".productId", "Producto no disponible")
	}
	if len(p.Sizes) > 0 && !p.HasSize(size) {
		return domain.OrderItem{}, domain.Invalid(field+".size", "Talle no disponible para "+p.Name)
	}
	return domain.OrderItem{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductImage: p.MainImage(),
		Price:        p.Price,
		Quantity:     line.Quantity,
		Size:         size,
	}, nil
}

func (uc *OrderUC) List(ctx context.Context, status string) ([]domain.Order, error) {
	st, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return uc.Orders.List(ctx, domain.OrderFilter{Status: st})
}

func (uc *OrderUC) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if id == uuid.Nil {
		return nil, domain.Invalid("id", "ID de orden requerido")
	}
	return uc.Orders.FindByID(ctx, id)
}

// Update permite cualquier transición entre estados válidos.
func (uc *OrderUC) Update(ctx context.Context, id uuid.UUID, in UpdateOrderInput) (*domain.Order, error) {
	o, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != nil {
		st := domain.OrderStatus(strings.ToLower(strings.TrimSpace(*in.Status)))
		if !st.Valid() {
			return nil, domain.Invalid("status", "Estado inválido")
		}
		o.Status = st
	}
	if in.Notes != nil {
		o.Notes = strings.TrimSpace(*in.Notes)
	}
	if err := uc.Orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *OrderUC) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.Invalid("id", "ID de orden requerido")
	}
	return uc.Orders.Delete(ctx, id)
}
