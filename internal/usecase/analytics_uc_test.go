package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/marina/internal/adapters/repo/memory"
	"github.com/phenrril/marina/internal/domain"
	"github.com/phenrril/marina/internal/usecase"
)

type fakeGeo struct {
	byIP map[string]domain.GeoInfo
}

func (g fakeGeo) Locate(ctx context.Context, ip string) (domain.GeoInfo, error) {
	if info, ok := g.byIP[ip]; ok {
		return info, nil
	}
	return domain.GeoInfo{}, errors.New("timeout")
}

type analyticsFixture struct {
	uc       *usecase.AnalyticsUC
	events   *memory.AnalyticsRepo
	products *memory.ProductRepo
	now      time.Time
}

func newAnalyticsFixture(t *testing.T, policy usecase.RollupPolicy) *analyticsFixture {
	t.Helper()
	f := &analyticsFixture{
		events:   memory.NewAnalyticsRepo(),
		products: memory.NewProductRepo(),
		now:      time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC),
	}
	f.uc = &usecase.AnalyticsUC{
		Events:   f.events,
		Products: &usecase.ProductUC{Products: f.products},
		Geo: fakeGeo{byIP: map[string]domain.GeoInfo{
			"200.1.1.1": {Country: "Argentina", City: "La Plata"},
			"190.2.2.2": {Country: "Uruguay", City: "Montevideo"},
		}},
		Rollup: policy,
		Now:    func() time.Time { return f.now },
	}
	return f
}

func (f *analyticsFixture) visitAt(t *testing.T, at time.Time, ip, country string) {
	t.Helper()
	require.NoError(t, f.events.CreateEvent(context.Background(), &domain.Event{
		Kind: domain.EventVisit, IP: ip, Country: country, City: "x", Timestamp: at,
	}))
}

func (f *analyticsFixture) addProduct(t *testing.T, name string) uuid.UUID {
	t.Helper()
	p := &domain.Product{ID: uuid.New(), Name: name, Price: decimal.NewFromInt(1), Active: true}
	require.NoError(t, f.products.Save(context.Background(), p))
	return p.ID
}

func TestRecordVisitGeo(t *testing.T) {
	t.Parallel()

	f := newAnalyticsFixture(t, usecase.RollupPolicy{})
	ctx := context.Background()
	require.NoError(t, f.uc.RecordVisit(ctx, "200.1.1.1", "Mozilla"))
	require.NoError(t, f.uc.RecordVisit(ctx, "10.9.9.9", "Mozilla"))
	require.NoError(t, f.uc.RecordVisit(ctx, "unknown", "curl"))

	visits, err := f.events.ListEvents(ctx, domain.EventVisit, f.now.Add(-time.Hour), f.now, 0, 0)
	require.NoError(t, err)
	require.Len(t, visits, 3)

	countries := map[string]int{}
	for _, v := range visits {
		countries[v.Country]++
	}
	assert.Equal(t, 1, countries["Argentina"])
	assert.Equal(t, 2, countries[domain.UnknownPlace])
}

func TestStatsWindowExcludesOlderEvents(t *testing.T) {
	t.Parallel()

	f := newAnalyticsFixture(t, usecase.RollupPolicy{})
	f.visitAt(t, f.now.AddDate(0, 0, -2), "1.1.1.1", "Argentina")
	f.visitAt(t, f.now.AddDate(0, 0, -29), "1.1.1.2", "Argentina")
	f.visitAt(t, f.now.AddDate(0, 0, -31), "1.1.1.3", "Chile")

	st, err := f.uc.Stats(context.Background(), 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 30, st.Days)
	assert.EqualValues(t, 2, st.TotalVisits)
	assert.EqualValues(t, 2, st.UniqueVisitors)
	require.Len(t, st.VisitsByCountry, 1)
	assert.Equal(t, "Argentina", st.VisitsByCountry[0].Country)
}

func TestStatsPagination(t *testing.T) {
	t.Parallel()

	f := newAnalyticsFixture(t, usecase.RollupPolicy{})
	for i := 0; i < 25; i++ {
		f.visitAt(t, f.now.Add(-time.Duration(i)*time.Minute), fmt.Sprintf("10.0.0.%d", i%7), "Argentina")
	}
	ctx := context.Background()

	p1, err := f.uc.Stats(ctx, 30, 1)
	require.NoError(t, err)
	assert.Len(t, p1.RecentVisits, 10)
	assert.Equal(t, 3, p1.Pagination.TotalPages)
	assert.EqualValues(t, 25, p1.Pagination.TotalItems)
	assert.EqualValues(t, 7, p1.UniqueVisitors)
	assert.True(t, p1.RecentVisits[0].Timestamp.After(p1.RecentVisits[9].Timestamp))

	p3, err := f.uc.Stats(ctx, 30, 3)
	require.NoError(t, err)
	assert.Len(t, p3.RecentVisits, 5)
	assert.Equal(t, 3, p3.Pagination.CurrentPage)

	p4, err := f.uc.Stats(ctx, 30, 4)
	require.NoError(t, err)
	assert.Empty(t, p4.RecentVisits)
}

func TestStatsCountryHistogramDescending(t *testing.T) {
	t.Parallel()

	f := newAnalyticsFixture(t, usecase.RollupPolicy{})
	for country, n := range map[string]int{"Chile": 2, "Argentina": 5, "Uruguay": 3, domain.UnknownPlace: 1} {
		for i := 0; i < n; i++ {
			f.visitAt(t, f.now.Add(-time.Hour), "ip-"+country, country)
		}
	}

	st, err := f.uc.Stats(context.Background(), 7, 1)
	require.NoError(t, err)

	got := []string{}
	for _, c := range st.VisitsByCountry {
		got = append(got, c.Country)
	}
	assert.Equal(t, []string{"Argentina", "Uruguay", "Chile", domain.UnknownPlace}, got)
	for i := 1; i < len(st.VisitsByCountry); i++ {
		assert.GreaterOrEqual(t, st.VisitsByCountry[i-1].Count, st.VisitsByCountry[i].Count)
	}
}

func TestStatsMergesRollupAndDiscreteCounts(t *testing.T) {
	t.Parallel()

	f := newAnalyticsFixture(t, usecase.RollupPolicy{Views: true})
	ctx := context.Background()
	luna := f.addProduct(t, "Luna")
	sol := f.addProduct(t, "Sol")
	gone := uuid.New()

	// vistas como contador diario
	for i := 0; i < 3; i++ {
		require.NoError(t, f.uc.RecordView(ctx, sol, "1.1.1.1"))
	}
	require.NoError(t, f.uc.RecordView(ctx, luna, "1.1.1.1"))
	require.NoError(t, f.uc.RecordView(ctx, gone, "1.1.1.1"))
	// un evento discreto de vista viejo (antes de activar el rollup)
	require.NoError(t, f.events.CreateEvent(ctx, &domain.Event{Kind: domain.EventView, ProductID: &luna, Timestamp: f.now.Add(-time.Hour)}))

	// clicks como eventos discretos
	require.NoError(t, f.uc.RecordClick(ctx, luna, "1.1.1.1"))
	require.NoError(t, f.uc.RecordClick(ctx, luna, "1.1.1.1"))

	st, err := f.uc.Stats(ctx, 30, 1)
	require.NoError(t, err)

	require.Len(t, st.MostViewed, 2)
	assert.Equal(t, "Sol", st.MostViewed[0].ProductName)
	assert.EqualValues(t, 3, st.MostViewed[0].Count)
	assert.Equal(t, "Luna", st.MostViewed[1].ProductName)
	assert.EqualValues(t, 2, st.MostViewed[1].Count)
	assert.EqualValues(t, 6, st.TotalViews)

	require.Len(t, st.MostClicked, 1)
	assert.EqualValues(t, 2, st.MostClicked[0].Count)
	assert.EqualValues(t, 2, st.TotalClicks)

	clicks, err := f.events.CountEvents(ctx, domain.EventClick, f.now.Add(-time.Hour), f.now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, clicks)
}

func TestRecordRequiresProduct(t *testing.T) {
	t.Parallel()

	f := newAnalyticsFixture(t, usecase.RollupPolicy{})
	assert.True(t, domain.IsValidation(f.uc.RecordClick(context.Background(), uuid.Nil, "")))
	assert.True(t, domain.IsValidation(f.uc.RecordView(context.Background(), uuid.Nil, "")))
}

func TestStatsHugePageIsEmpty(t *testing.T) {
	t.Parallel()

	f := newAnalyticsFixture(t, usecase.RollupPolicy{})
	for i := 0; i < 12; i++ {
		f.visitAt(t, f.now.Add(-time.Duration(i)*time.Minute), "10.0.0.1", "Argentina")
	}

	var st *domain.Stats
	require.NotPanics(t, func() {
		var err error
		st, err = f.uc.Stats(context.Background(), 30, 922337203685477582)
		require.NoError(t, err)
	})
	assert.Empty(t, st.RecentVisits)
	assert.Equal(t, 2, st.Pagination.TotalPages)
	assert.Equal(t, 922337203685477582, st.Pagination.CurrentPage)
}

func TestTopDropsMissingWithoutBackfill(t *testing.T) {
	t.Parallel()

	f := newAnalyticsFixture(t, usecase.RollupPolicy{})
	ctx := context.Background()

	// 10 productos borrados con más clicks que 2 que siguen en el catálogo
	for i := 0; i < domain.TopProductsLimit; i++ {
		gone := uuid.New()
		for j := 0; j < 5; j++ {
			require.NoError(t, f.uc.RecordClick(ctx, gone, "1.1.1.1"))
		}
	}
	alive := f.addProduct(t, "Sigue")
	require.NoError(t, f.uc.RecordClick(ctx, alive, "1.1.1.1"))

	st, err := f.uc.Stats(ctx, 30, 1)
	require.NoError(t, err)
	assert.Empty(t, st.MostClicked)
	assert.EqualValues(t, 5*domain.TopProductsLimit+1, st.TotalClicks)
}

func TestStatsRecentClicks(t *testing.T) {
	t.Parallel()

	f := newAnalyticsFixture(t, usecase.RollupPolicy{Views: true})
	ctx := context.Background()
	luna := f.addProduct(t, "Luna")
	gone := uuid.New()

	for i, id := range []uuid.UUID{luna, gone, luna} {
		id := id
		require.NoError(t, f.events.CreateEvent(ctx, &domain.Event{
			Kind: domain.EventClick, ProductID: &id, IP: "200.1.1.1",
			Timestamp: f.now.Add(-time.Duration(3-i) * time.Minute),
		}))
	}
	require.NoError(t, f.uc.RecordView(ctx, luna, "1.1.1.1"))

	st, err := f.uc.Stats(ctx, 30, 1)
	require.NoError(t, err)
	require.Len(t, st.RecentClicks, 2)
	assert.Equal(t, "Luna", st.RecentClicks[0].ProductName)
	assert.True(t, st.RecentClicks[0].Timestamp.After(st.RecentClicks[1].Timestamp))
	assert.Equal(t, "200.1.1.1", st.RecentClicks[0].IP)
}
