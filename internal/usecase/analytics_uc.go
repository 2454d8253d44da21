package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/marina/internal/domain"
)

// RollupPolicy decide qué métricas se guardan como contador diario
// en lugar de un evento por fila.
type RollupPolicy struct {
	Views  bool
	Clicks bool
}

func (p RollupPolicy) rollup(kind domain.EventKind) bool {
	switch kind {
	case domain.EventView:
		return p.Views
	case domain.EventClick:
		return p.Clicks
	}
	return false
}

type AnalyticsUC struct {
	Events   domain.AnalyticsRepo
	Products *ProductUC
	Geo      domain.GeoLocator
	Rollup   RollupPolicy
	Now      func() time.Time
}

const exportMaxVisits = 5000

func (uc *AnalyticsUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

// RecordVisit guarda la visita; si la geolocalización falla queda "Unknown".
func (uc *AnalyticsUC) RecordVisit(ctx context.Context, ip, userAgent string) error {
	geo := domain.UnknownGeo()
	if uc.Geo != nil && ip != "" && ip != "unknown" {
		g, err := uc.Geo.Locate(ctx, ip)
		if err != nil {
			log.Debug().Err(err).Str("ip", ip).Msg("geo lookup falló")
		} else {
			geo = g
		}
	}
	if strings.TrimSpace(geo.Country) == "" {
		geo.Country = domain.UnknownPlace
	}
	if strings.TrimSpace(geo.City) == "" {
		geo.City = domain.UnknownPlace
	}
	e := &domain.Event{
		ID:        uuid.New(),
		Kind:      domain.EventVisit,
		IP:        ip,
		Country:   geo.Country,
		City:      geo.City,
		UserAgent: userAgent,
		Timestamp: uc.now(),
	}
	return uc.Events.CreateEvent(ctx, e)
}

func (uc *AnalyticsUC) RecordClick(ctx context.Context, productID uuid.UUID, ip string) error {
	return uc.record(ctx, domain.EventClick, productID, ip)
}

func (uc *AnalyticsUC) RecordView(ctx context.Context, productID uuid.UUID, ip string) error {
	return uc.record(ctx, domain.EventView, productID, ip)
}

func (uc *AnalyticsUC) record(ctx context.Context, kind domain.EventKind, productID uuid.UUID, ip string) error {
	if productID == uuid.Nil {
		return domain.Invalid("productId", "Product ID requerido")
	}
	now := uc.now()
	if uc.Rollup.rollup(kind) {
		return uc.Events.IncrementDaily(ctx, domain.StartOfDay(now), kind, productID)
	}
	pid := productID
	return uc.Events.CreateEvent(ctx, &domain.Event{
		ID:        uuid.New(),
		Kind:      kind,
		IP:        ip,
		ProductID: &pid,
		Timestamp: now,
	})
}

func normalizeWindow(days, page int) (int, int) {
	if days <= 0 {
		days = domain.DefaultStatsDays
	}
	if page < 1 {
		page = 1
	}
	return days, page
}

// Stats agrega la ventana [ahora - days, ahora]. Los contadores diarios se
// toman por día completo desde el día de inicio de la ventana.
func (uc *AnalyticsUC) Stats(ctx context.Context, days, page int) (*domain.Stats, error) {
	days, page = normalizeWindow(days, page)
	to := uc.now()
	from := to.AddDate(0, 0, -days)

	st := &domain.Stats{Days: days, WindowStart: from, WindowEnd: to}

	var err error
	if st.TotalVisits, err = uc.Events.CountEvents(ctx, domain.EventVisit, from, to); err != nil {
		return nil, fmt.Errorf("contar visitas: %w", err)
	}
	if st.UniqueVisitors, err = uc.Events.CountDistinctVisitors(ctx, from, to); err != nil {
		return nil, fmt.Errorf("visitantes únicos: %w", err)
	}
	if st.VisitsByCountry, err = uc.Events.VisitsByCountry(ctx, from, to); err != nil {
		return nil, fmt.Errorf("visitas por país: %w", err)
	}
	domain.SortCountries(st.VisitsByCountry)

	offset, pag := domain.Paginate(st.TotalVisits, page, domain.StatsPageSize)
	st.Pagination = pag
	if st.RecentVisits, err = uc.Events.ListEvents(ctx, domain.EventVisit, from, to, offset, domain.StatsPageSize); err != nil {
		return nil, fmt.Errorf("listar visitas: %w", err)
	}

	views, err := uc.productCounts(ctx, domain.EventView, from, to)
	if err != nil {
		return nil, err
	}
	clicks, err := uc.productCounts(ctx, domain.EventClick, from, to)
	if err != nil {
		return nil, err
	}
	st.TotalViews = domain.SumCounts(views)
	st.TotalClicks = domain.SumCounts(clicks)
	st.MostViewed = uc.top(ctx, views)
	st.MostClicked = uc.top(ctx, clicks)

	if st.RecentClicks, err = uc.recentClicks(ctx, from, to); err != nil {
		return nil, err
	}
	return st, nil
}

// recentClicks lista los últimos clicks discretos; los que quedaron en
// contadores diarios no tienen hora y no aparecen acá.
func (uc *AnalyticsUC) recentClicks(ctx context.Context, from, to time.Time) ([]domain.RecentClick, error) {
	events, err := uc.Events.ListEvents(ctx, domain.EventClick, from, to, 0, domain.RecentClicksLimit)
	if err != nil {
		return nil, fmt.Errorf("listar clicks: %w", err)
	}
	out := []domain.RecentClick{}
	if len(events) == 0 || uc.Products == nil {
		return out, nil
	}
	seen := map[uuid.UUID]bool{}
	ids := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		if e.ProductID != nil && !seen[*e.ProductID] {
			seen[*e.ProductID] = true
			ids = append(ids, *e.ProductID)
		}
	}
	names := uc.Products.Names(ctx, ids)
	for _, e := range events {
		if e.ProductID == nil {
			continue
		}
		name, ok := names[*e.ProductID]
		if !ok {
			continue
		}
		out = append(out, domain.RecentClick{ProductID: *e.ProductID, ProductName: name, IP: e.IP, Timestamp: e.Timestamp})
	}
	return out, nil
}

// productCounts junta eventos discretos y contadores diarios de una métrica.
func (uc *AnalyticsUC) productCounts(ctx context.Context, kind domain.EventKind, from, to time.Time) ([]domain.ProductCount, error) {
	discrete, err := uc.Events.ProductEventCounts(ctx, kind, from, to)
	if err != nil {
		return nil, fmt.Errorf("conteo %s: %w", kind, err)
	}
	rolled, err := uc.Events.DailyProductCounts(ctx, kind, domain.StartOfDay(from), domain.StartOfDay(to))
	if err != nil {
		return nil, fmt.Errorf("contadores %s: %w", kind, err)
	}
	return domain.MergeProductCounts(discrete, rolled), nil
}

// top toma los primeros del ranking y después descarta los productos que
// ya no existen, así que puede devolver menos de TopProductsLimit.
func (uc *AnalyticsUC) top(ctx context.Context, counts []domain.ProductCount) []domain.ProductStat {
	out := []domain.ProductStat{}
	if uc.Products == nil {
		return out
	}
	if len(counts) > domain.TopProductsLimit {
		counts = counts[:domain.TopProductsLimit]
	}
	ids := make([]uuid.UUID, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.ProductID)
	}
	names := uc.Products.Names(ctx, ids)
	for _, c := range counts {
		name, ok := names[c.ProductID]
		if !ok {
			continue
		}
		out = append(out, domain.ProductStat{ProductID: c.ProductID, ProductName: name, Count: c.Count})
	}
	return out
}

// Visits devuelve el log completo de la ventana (para exportar).
func (uc *AnalyticsUC) Visits(ctx context.Context, days int) ([]domain.Event, error) {
	days, _ = normalizeWindow(days, 1)
	to := uc.now()
	return uc.Events.ListEvents(ctx, domain.EventVisit, to.AddDate(0, 0, -days), to, 0, exportMaxVisits)
}

func logLookupError(err error, id uuid.UUID) {
	log.Warn().Err(err).Str("product", id.String()).Msg("no se pudo resolver producto")
}
