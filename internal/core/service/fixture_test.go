package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/TraceApi/roastery-core/internal/core/service"
	"github.com/TraceApi/roastery-core/internal/platform/storage/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kg(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(d int) domain.Date {
	return domain.NewDate(2025, time.March, d)
}

// fixture wires every service to one in-memory store.
type fixture struct {
	t   *testing.T
	ctx context.Context

	store    ports.Store
	origins  ports.OriginService
	green    ports.GreenCoffeeService
	roasting ports.RoastingService
	recipes  ports.RecipeService
	blending ports.BlendingService
	sales    ports.SalesService
	reports  ports.ReportService
	lineage  ports.LineageService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, memory.NewStore(), nil)
}

func newFixtureWith(t *testing.T, store ports.Store, cache ports.CacheRepository) *fixture {
	t.Helper()
	clock := time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)
	deps := service.Dependencies{
		Store: store,
		Cache: cache,
		Clock: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
		Suffix: func() int { return 4242 },
	}
	return &fixture{
		t:        t,
		ctx:      context.Background(),
		store:    store,
		origins:  service.NewOriginService(deps),
		green:    service.NewGreenCoffeeService(deps),
		roasting: service.NewRoastingService(deps),
		recipes:  service.NewRecipeService(deps),
		blending: service.NewBlendingService(deps),
		sales:    service.NewSalesService(deps),
		reports:  service.NewReportService(deps),
		lineage:  service.NewLineageService(deps),
	}
}

func (f *fixture) origin(name string, suppliers ...string) *domain.Origin {
	f.t.Helper()
	if len(suppliers) == 0 {
		suppliers = []string{"Cooperative " + name}
	}
	o, err := f.origins.AddOrigin(f.ctx, ports.OriginInput{
		Name:             name,
		KilosPerBag:      kg("60"),
		SuppliersOrFarms: suppliers,
	})
	require.NoError(f.t, err)
	return o
}

func (f *fixture) greenBatch(o *domain.Origin, code, qty string) *domain.GreenBatch {
	f.t.Helper()
	g, err := f.green.AddGreenBatch(f.ctx, ports.GreenBatchInput{
		OriginID:       o.ID,
		SupplierOrFarm: o.SuppliersOrFarms[0],
		QuantityKg:     kg(qty),
		UnitPrice:      kg("6.40"),
		EntryDate:      day(1),
		BatchCode:      code,
	})
	require.NoError(f.t, err)
	return g
}

func (f *fixture) roast(g *domain.GreenBatch, greenKg, resultKg string) *domain.RoastedBatch {
	f.t.Helper()
	r, err := f.roasting.RoastCoffee(f.ctx, ports.RoastInput{
		GreenBatchID:    g.ID,
		QuantityGreenKg: kg(greenKg),
		ResultantKg:     kg(resultKg),
		RoastType:       domain.RoastMedium,
		RoastDate:       day(14),
	})
	require.NoError(f.t, err)
	return r
}

func (f *fixture) sell(ref domain.ProductRef, qty string) *domain.Sale {
	f.t.Helper()
	s, err := f.sales.RecordSale(f.ctx, ports.SaleInput{
		Product:    ref,
		QuantityKg: kg(qty),
		UnitPrice:  kg("24"),
		SaleDate:   day(20),
	})
	require.NoError(f.t, err)
	return s
}

func (f *fixture) greenStock(id uuid.UUID) decimal.Decimal {
	f.t.Helper()
	g, err := f.green.GetGreenBatch(f.ctx, id)
	require.NoError(f.t, err)
	return g.QuantityKg
}

func (f *fixture) roastedStock(id uuid.UUID) decimal.Decimal {
	f.t.Helper()
	r, err := f.roasting.GetRoastedBatch(f.ctx, id)
	require.NoError(f.t, err)
	return r.StockKg
}

func (f *fixture) blendStock(id uuid.UUID) decimal.Decimal {
	f.t.Helper()
	b, err := f.blending.GetBlendedBatch(f.ctx, id)
	require.NoError(f.t, err)
	return b.StockKg
}

// assertBalanced checks that every received kilo is accounted for.
func (f *fixture) assertBalanced() {
	f.t.Helper()
	balance, err := f.reports.MassBalance(f.ctx)
	require.NoError(f.t, err)
	assert.True(f.t, balance.Balanced, "discrepancy %s kg", balance.Discrepancy)
}

func assertKg(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, kg(want).Equal(got), "want %s kg, got %s kg", want, got)
}

func component(originID uuid.UUID, pct string, allocations ...domain.Allocation) domain.BlendComponent {
	return domain.BlendComponent{OriginID: originID, Percentage: kg(pct), Allocations: allocations}
}

func alloc(r *domain.RoastedBatch, qty string) domain.Allocation {
	return domain.Allocation{RoastedBatchID: r.ID, QuantityUsedKg: kg(qty)}
}

func roastedRef(r *domain.RoastedBatch) domain.ProductRef {
	return domain.ProductRef{Type: domain.ProductRoasted, ID: r.ID}
}

func blendedRef(b *domain.BlendedBatch) domain.ProductRef {
	return domain.ProductRef{Type: domain.ProductBlended, ID: b.ID}
}

// --- Fault injection ---

var errDiskFull = errors.New("disk full")

// flakyStore fails the failAt-th roasted stock update of each unit of work.
type flakyStore struct {
	ports.Store
	failAt int
}

func (s *flakyStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	calls := 0
	return s.Store.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		return fn(ctx, flakyRepos{Repositories: repos, calls: &calls, failAt: s.failAt})
	})
}

type flakyRepos struct {
	ports.Repositories
	calls  *int
	failAt int
}

func (r flakyRepos) RoastedBatches() ports.RoastedBatchRepository {
	return flakyRoasted{RoastedBatchRepository: r.Repositories.RoastedBatches(), calls: r.calls, failAt: r.failAt}
}

type flakyRoasted struct {
	ports.RoastedBatchRepository
	calls  *int
	failAt int
}

func (r flakyRoasted) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	*r.calls++
	if r.failAt > 0 && *r.calls == r.failAt {
		return errDiskFull
	}
	return r.RoastedBatchRepository.AdjustStock(ctx, id, delta)
}
