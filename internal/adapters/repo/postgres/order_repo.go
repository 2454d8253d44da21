package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/marina/internal/domain"
)

const orderCounter = "orders"

// Counter guarda secuencias con nombre (numeración de órdenes).
type Counter struct {
	Name  string `gorm:"size:40;primaryKey"`
	Value int64  `gorm:"not null"`
}

func (Counter) TableName() string { return "counters" }

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) NextSequence(ctx context.Context) (int64, error) {
	var v int64
	err := r.db.WithContext(ctx).Raw(
		"INSERT INTO counters (name, value) VALUES (?, 1) ON CONFLICT (name) DO UPDATE SET value = counters.value + 1 RETURNING value",
		orderCounter,
	).Scan(&v).Error
	return v, err
}

// SeedCounter deja el contador en el mayor número ya emitido si todavía no existe.
func SeedCounter(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO counters (name, value)
		 SELECT ?, COALESCE(MAX(CAST(SUBSTRING(number FROM '[0-9]+$') AS BIGINT)), 0) FROM orders
		 ON CONFLICT (name) DO NOTHING`,
		orderCounter,
	).Error
}

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
		o.Items[i].Position = i
	}
	return r.db.WithContext(ctx).Create(o).Error
}

func itemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

func (r *OrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Items", itemsByPosition).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	var list []domain.Order
	q := r.db.WithContext(ctx).Preload("Items", itemsByPosition)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if err := q.Order("created_at desc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Update solo toca estado y notas; número e items no cambian.
func (r *OrderRepo) Update(ctx context.Context, o *domain.Order) error {
	o.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", o.ID).
		Updates(map[string]any{"status": o.Status, "notes": o.Notes, "updated_at": o.UpdatedAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Order{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
