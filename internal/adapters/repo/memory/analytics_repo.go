package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/marina/internal/domain"
)

type dailyKey struct {
	day       string
	metric    domain.EventKind
	productID uuid.UUID
}

type AnalyticsRepo struct {
	mu     sync.RWMutex
	events []domain.Event
	daily  map[dailyKey]int64
}

func NewAnalyticsRepo() *AnalyticsRepo {
	return &AnalyticsRepo{daily: map[dailyKey]int64{}}
}

const dayLayout = "2006-01-02"

func inWindow(ts, from, to time.Time) bool {
	return !ts.Before(from) && !ts.After(to)
}

func (r *AnalyticsRepo) CreateEvent(ctx context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *AnalyticsRepo) IncrementDaily(ctx context.Context, day time.Time, metric domain.EventKind, productID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.daily[dailyKey{day: day.Format(dayLayout), metric: metric, productID: productID}]++
	return nil
}

func (r *AnalyticsRepo) CountEvents(ctx context.Context, kind domain.EventKind, from, to time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, e := range r.events {
		if e.Kind == kind && inWindow(e.Timestamp, from, to) {
			n++
		}
	}
	return n, nil
}

func (r *AnalyticsRepo) CountDistinctVisitors(ctx context.Context, from, to time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	for _, e := range r.events {
		if e.Kind == domain.EventVisit && inWindow(e.Timestamp, from, to) {
			seen[e.IP] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (r *AnalyticsRepo) VisitsByCountry(ctx context.Context, from, to time.Time) ([]domain.CountryCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc := map[string]int64{}
	for _, e := range r.events {
		if e.Kind == domain.EventVisit && inWindow(e.Timestamp, from, to) {
			acc[e.Country]++
		}
	}
	out := make([]domain.CountryCount, 0, len(acc))
	for c, n := range acc {
		out = append(out, domain.CountryCount{Country: c, Count: n})
	}
	domain.SortCountries(out)
	return out, nil
}

func (r *AnalyticsRepo) ListEvents(ctx context.Context, kind domain.EventKind, from, to time.Time, offset, limit int) ([]domain.Event, error) {
	if offset < 0 {
		offset = 0
	}
	r.mu.RLock()
	list := []domain.Event{}
	for _, e := range r.events {
		if e.Kind == kind && inWindow(e.Timestamp, from, to) {
			list = append(list, e)
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp.After(list[j].Timestamp) })
	if offset >= len(list) {
		return []domain.Event{}, nil
	}
	end := len(list)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return list[offset:end], nil
}

func (r *AnalyticsRepo) ProductEventCounts(ctx context.Context, kind domain.EventKind, from, to time.Time) ([]domain.ProductCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc := map[uuid.UUID]int64{}
	for _, e := range r.events {
		if e.Kind == kind && e.ProductID != nil && inWindow(e.Timestamp, from, to) {
			acc[*e.ProductID]++
		}
	}
	return toCounts(acc), nil
}

func (r *AnalyticsRepo) DailyProductCounts(ctx context.Context, metric domain.EventKind, fromDay, toDay time.Time) ([]domain.ProductCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	from, to := fromDay.Format(dayLayout), toDay.Format(dayLayout)
	acc := map[uuid.UUID]int64{}
	for k, n := range r.daily {
		if k.metric == metric && k.day >= from && k.day <= to {
			acc[k.productID] += n
		}
	}
	return toCounts(acc), nil
}

func toCounts(acc map[uuid.UUID]int64) []domain.ProductCount {
	out := make([]domain.ProductCount, 0, len(acc))
	for id, n := range acc {
		out = append(out, domain.ProductCount{ProductID: id, Count: n})
	}
	return out
}
