package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/marina/internal/domain"
)

type AnalyticsRepo struct{ db *gorm.DB }

func NewAnalyticsRepo(db *gorm.DB) *AnalyticsRepo { return &AnalyticsRepo{db: db} }

func (r *AnalyticsRepo) window(ctx context.Context, kind domain.EventKind, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Event{}).
		Where("kind = ? AND timestamp >= ? AND timestamp <= ?", kind, from, to)
}

func (r *AnalyticsRepo) CreateEvent(ctx context.Context, e *domain.Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

// IncrementDaily suma uno al contador del día con un upsert atómico.
func (r *AnalyticsRepo) IncrementDaily(ctx context.Context, day time.Time, metric domain.EventKind, productID uuid.UUID) error {
	row := domain.DailyCounter{Day: datatypes.Date(domain.StartOfDay(day)), Metric: metric, ProductID: productID, Count: 1}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}, {Name: "metric"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{"count": gorm.Expr("analytics_daily_counters.count + 1")}),
	}).Create(&row).Error
}

func (r *AnalyticsRepo) CountEvents(ctx context.Context, kind domain.EventKind, from, to time.Time) (int64, error) {
	var n int64
	err := r.window(ctx, kind, from, to).Count(&n).Error
	return n, err
}

func (r *AnalyticsRepo) CountDistinctVisitors(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.window(ctx, domain.EventVisit, from, to).Distinct("ip").Count(&n).Error
	return n, err
}

func (r *AnalyticsRepo) VisitsByCountry(ctx context.Context, from, to time.Time) ([]domain.CountryCount, error) {
	out := []domain.CountryCount{}
	err := r.window(ctx, domain.EventVisit, from, to).
		Select("country, COUNT(*) AS count").
		Group("country").
		Order("count desc").
		Scan(&out).Error
	return out, err
}

func (r *AnalyticsRepo) ListEvents(ctx context.Context, kind domain.EventKind, from, to time.Time, offset, limit int) ([]domain.Event, error) {
	out := []domain.Event{}
	if offset < 0 {
		offset = 0
	}
	q := r.window(ctx, kind, from, to).Order("timestamp desc").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *AnalyticsRepo) ProductEventCounts(ctx context.Context, kind domain.EventKind, from, to time.Time) ([]domain.ProductCount, error) {
	out := []domain.ProductCount{}
	err := r.window(ctx, kind, from, to).
		Where("product_id IS NOT NULL").
		Select("product_id, COUNT(*) AS count").
		Group("product_id").
		Scan(&out).Error
	return out, err
}

func (r *AnalyticsRepo) DailyProductCounts(ctx context.Context, metric domain.EventKind, fromDay, toDay time.Time) ([]domain.ProductCount, error) {
	out := []domain.ProductCount{}
	err := r.db.WithContext(ctx).Model(&domain.DailyCounter{}).
		Where("metric = ? AND day >= ? AND day <= ?", metric, datatypes.Date(fromDay), datatypes.Date(toDay)).
		Select("product_id, SUM(count) AS count").
		Group("product_id").
		Scan(&out).Error
	return out, err
}
