//go:build integration
// +build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/TraceApi/roastery-core/internal/config"
	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/TraceApi/roastery-core/internal/core/service"
	"github.com/TraceApi/roastery-core/internal/platform/storage/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRoasteryLifecycle runs receive, roast, blend, sell and trace against a
// real Postgres. DATABASE_URL (or .env) must point at a disposable database.
func TestRoasteryLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// 1. Setup: migrate and start from empty tables
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, cfg.DatabaseURL, "up"))

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	require.NoError(t, err)
	defer pool.Close()
	_, err = pool.Exec(ctx, "TRUNCATE sales, blend_allocations, blend_components, blended_batches, recipes, roasted_batches, green_batches, origins CASCADE")
	require.NoError(t, err)

	deps := service.Dependencies{Store: postgres.NewStore(pool)}
	origins := service.NewOriginService(deps)
	green := service.NewGreenCoffeeService(deps)
	roasting := service.NewRoastingService(deps)
	blending := service.NewBlendingService(deps)
	sales := service.NewSalesService(deps)
	reports := service.NewReportService(deps)
	lineage := service.NewLineageService(deps)

	kg := decimal.RequireFromString
	date := domain.NewDate(2025, time.March, 14)

	// 2. Receive green coffee
	brazil, err := origins.AddOrigin(ctx, ports.OriginInput{Name: "Brazil", KilosPerBag: kg("60"), SuppliersOrFarms: []string{"Fazenda Santa Ines"}})
	require.NoError(t, err)
	ethiopia, err := origins.AddOrigin(ctx, ports.OriginInput{Name: "Ethiopia", KilosPerBag: kg("60"), SuppliersOrFarms: []string{"Yirgacheffe Union"}})
	require.NoError(t, err)

	gb, err := green.AddGreenBatch(ctx, ports.GreenBatchInput{OriginID: brazil.ID, SupplierOrFarm: "Fazenda Santa Ines", QuantityKg: kg("200"), UnitPrice: kg("6.10"), EntryDate: date, BatchCode: "BR-INT-1"})
	require.NoError(t, err)
	ge, err := green.AddGreenBatch(ctx, ports.GreenBatchInput{OriginID: ethiopia.ID, SupplierOrFarm: "Yirgacheffe Union", QuantityKg: kg("100"), UnitPrice: kg("8.40"), EntryDate: date, BatchCode: "ET-INT-1"})
	require.NoError(t, err)

	_, err = green.AddGreenBatch(ctx, ports.GreenBatchInput{OriginID: brazil.ID, SupplierOrFarm: "Fazenda Santa Ines", QuantityKg: kg("1"), UnitPrice: kg("1"), EntryDate: date, BatchCode: "BR-INT-1"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// 3. Roast
	rb, err := roasting.RoastCoffee(ctx, ports.RoastInput{GreenBatchID: gb.ID, QuantityGreenKg: kg("120"), ResultantKg: kg("100"), RoastType: domain.RoastMedium, RoastDate: date})
	require.NoError(t, err)
	re, err := roasting.RoastCoffee(ctx, ports.RoastInput{GreenBatchID: ge.ID, QuantityGreenKg: kg("60"), ResultantKg: kg("50"), RoastType: domain.RoastLight, RoastDate: date})
	require.NoError(t, err)

	_, err = roasting.RoastCoffee(ctx, ports.RoastInput{GreenBatchID: ge.ID, QuantityGreenKg: kg("41"), ResultantKg: kg("30"), RoastType: domain.RoastDark, RoastDate: date})
	var shortage *domain.InsufficientStockError
	require.ErrorAs(t, err, &shortage)
	assert.True(t, shortage.Available.Equal(kg("40")))

	// 4. Blend
	blend, err := blending.CreateBlend(ctx, ports.BlendInput{
		Name:            "House",
		TotalQuantityKg: kg("80"),
		CreationDate:    date,
		Components: []domain.BlendComponent{
			{OriginID: brazil.ID, Percentage: kg("75"), Allocations: []domain.Allocation{{RoastedBatchID: rb.ID, QuantityUsedKg: kg("60")}}},
			{OriginID: ethiopia.ID, Percentage: kg("25"), Allocations: []domain.Allocation{{RoastedBatchID: re.ID, QuantityUsedKg: kg("20")}}},
		},
	})
	require.NoError(t, err)

	stored, err := roasting.GetRoastedBatch(ctx, rb.ID)
	require.NoError(t, err)
	assert.True(t, stored.StockKg.Equal(kg("40")), "roasted stock %s", stored.StockKg)

	assert.ErrorIs(t, roasting.DeleteRoastedBatch(ctx, rb.ID), domain.ErrDependencyExists)

	// 5. Sell and report
	_, err = sales.RecordSale(ctx, ports.SaleInput{Product: domain.ProductRef{Type: domain.ProductBlended, ID: blend.ID}, QuantityKg: kg("30"), UnitPrice: kg("28"), SaleDate: date})
	require.NoError(t, err)
	_, err = sales.RecordSale(ctx, ports.SaleInput{Product: domain.ProductRef{Type: domain.ProductBlended, ID: uuid.New()}, QuantityKg: kg("1"), UnitPrice: kg("28"), SaleDate: date})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	balance, err := reports.MassBalance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Balanced, "discrepancy %s", balance.Discrepancy)

	monthly, err := reports.MonthlySales(ctx)
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, "2025-03", monthly[0].Month)

	// 6. Trace the blend
	trace, err := lineage.Trace(ctx, blend.BatchCode)
	require.NoError(t, err)
	assert.Equal(t, domain.StageBlended, trace.Stage)
	assert.Len(t, trace.Components, 2)
}
