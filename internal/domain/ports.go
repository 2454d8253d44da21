package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ProductRepo interface {
	List(ctx context.Context, f ProductFilter) ([]Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// MaxDisplayOrder devuelve ok=false si el catálogo está vacío.
	MaxDisplayOrder(ctx context.Context) (max int, ok bool, err error)
	Save(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Reorder asigna a cada id su índice; los ids desconocidos se ignoran.
	Reorder(ctx context.Context, ids []uuid.UUID) (int, error)
}

type OrderRepo interface {
	// NextSequence incrementa el contador de órdenes de forma atómica.
	NextSequence(ctx context.Context) (int64, error)
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, f OrderFilter) ([]Order, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AnalyticsRepo interface {
	CreateEvent(ctx context.Context, e *Event) error
	IncrementDaily(ctx context.Context, day time.Time, metric EventKind, productID uuid.UUID) error
	CountEvents(ctx context.Context, kind EventKind, from, to time.Time) (int64, error)
	CountDistinctVisitors(ctx context.Context, from, to time.Time) (int64, error)
	VisitsByCountry(ctx context.Context, from, to time.Time) ([]CountryCount, error)
	// ListEvents devuelve los eventos de un tipo, del más nuevo al más viejo.
	ListEvents(ctx context.Context, kind EventKind, from, to time.Time, offset, limit int) ([]Event, error)
	ProductEventCounts(ctx context.Context, kind EventKind, from, to time.Time) ([]ProductCount, error)
	DailyProductCounts(ctx context.Context, metric EventKind, fromDay, toDay time.Time) ([]ProductCount, error)
}

type SettingsRepo interface {
	Get(ctx context.Context) (*Settings, error)
	// Init inserta la fila si no existe y devuelve la guardada.
	Init(ctx context.Context, def *Settings) (*Settings, error)
	// Save con expectedVersion 0 pisa sin control; si no coincide devuelve ErrConflict.
	Save(ctx context.Context, s *Settings, expectedVersion int64) error
}

type AdminRepo interface {
	FindByEmail(ctx context.Context, email string) (*AdminUser, error)
	Save(ctx context.Context, u *AdminUser) error
}

type GeoLocator interface {
	Locate(ctx context.Context, ip string) (GeoInfo, error)
}

type OrderNotifier interface {
	NotifyOrder(ctx context.Context, o *Order) error
}

type UploadedImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type ImageStorage interface {
	Upload(ctx context.Context, file string) (*UploadedImage, error)
	Delete(ctx context.Context, publicID string) error
}
