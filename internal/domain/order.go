package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ParseOrderStatus acepta vacío o "all" como sin filtro.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	v := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" || v == "all" {
		return "", nil
	}
	if !v.Valid() {
		return "", Invalid("status", "Estado inválido")
	}
	return v, nil
}

type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Number      string          `gorm:"size:20;uniqueIndex;not null" json:"orderNumber"`
	Items       []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Customer    Customer        `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Status      OrderStatus     `gorm:"type:varchar(20);index;not null" json:"status"`
	Notes       string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// OrderItem es una foto del producto al momento de comprar.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"-"`
	OrderID      uuid.UUID       `gorm:"type:uuid;index" json:"-"`
	Position     int             `gorm:"not null;default:0" json:"-"`
	ProductID    uuid.UUID       `gorm:"type:uuid;index" json:"productId"`
	ProductName  string          `gorm:"size:180" json:"productName"`
	ProductImage string          `gorm:"size:500" json:"productImage"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	Size         string          `gorm:"size:10" json:"size"`
}

func (it OrderItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

type OrderFilter struct {
	Status OrderStatus
}

// FormatOrderNumber arma BK000001, BK000002, ...
func FormatOrderNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s%06d", prefix, seq)
}
