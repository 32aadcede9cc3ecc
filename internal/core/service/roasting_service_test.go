package service_test

import (
	"testing"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoastCoffee(t *testing.T) {
	f := newFixture(t)
	g := f.greenBatch(f.origin("Ethiopia"), "ET-001", "100")

	r := f.roast(g, "60", "51")

	assertKg(t, "9", r.ShrinkageKg)
	assertKg(t, "51", r.StockKg)
	assert.Equal(t, "ET-140325-4242", r.BatchCode)
	assertKg(t, "40", f.greenStock(g.ID))
	f.assertBalanced()
}

func TestRoastCoffee_Rejects(t *testing.T) {
	f := newFixture(t)
	g := f.greenBatch(f.origin("Ethiopia"), "ET-001", "100")

	tests := []struct {
		name    string
		greenKg string
		roastKg string
		want    error
	}{
		{"negative shrinkage", "50", "50.01", domain.ErrInvalidQuantity},
		{"zero green quantity", "0", "0", domain.ErrInvalidQuantity},
		{"more than the green stock", "100.5", "90", domain.ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.roasting.RoastCoffee(f.ctx, ports.RoastInput{
				GreenBatchID:    g.ID,
				QuantityGreenKg: kg(tt.greenKg),
				ResultantKg:     kg(tt.roastKg),
				RoastType:       domain.RoastDark,
				RoastDate:       day(14),
			})
			assert.ErrorIs(t, err, tt.want)
			assertKg(t, "100", f.greenStock(g.ID))
		})
	}

	_, err := f.roasting.RoastCoffee(f.ctx, ports.RoastInput{
		GreenBatchID:    g.ID,
		QuantityGreenKg: kg("120"),
		ResultantKg:     kg("100"),
		RoastType:       domain.RoastDark,
		RoastDate:       day(14),
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "ET-001", stockErr.BatchCode)
	assertKg(t, "20", stockErr.Shortfall())
}

func TestUpdateRoastedBatch_MovesToAnotherGreenBatch(t *testing.T) {
	f := newFixture(t)
	o := f.origin("Colombia")
	a := f.greenBatch(o, "CO-A", "100")
	b := f.greenBatch(o, "CO-B", "100")
	r := f.roast(a, "50", "42")
	assertKg(t, "50", f.greenStock(a.ID))

	updated, err := f.roasting.UpdateRoastedBatch(f.ctx, r.ID, ports.RoastInput{
		GreenBatchID:    b.ID,
		QuantityGreenKg: kg("70"),
		ResultantKg:     kg("60"),
		RoastType:       domain.RoastLight,
		RoastDate:       day(15),
	})
	require.NoError(t, err)

	assertKg(t, "100", f.greenStock(a.ID))
	assertKg(t, "30", f.greenStock(b.ID))
	assertKg(t, "10", updated.ShrinkageKg)
	assertKg(t, "60", updated.StockKg)
	assert.Equal(t, r.BatchCode, updated.BatchCode)
	f.assertBalanced()
}

func TestUpdateRoastedBatch_RestoresBeforeChecking(t *testing.T) {
	f := newFixture(t)
	g := f.greenBatch(f.origin("Kenya"), "KE-1", "100")
	r := f.roast(g, "80", "70")

	_, err := f.roasting.UpdateRoastedBatch(f.ctx, r.ID, ports.RoastInput{
		GreenBatchID:    g.ID,
		QuantityGreenKg: kg("100"),
		ResultantKg:     kg("85"),
		RoastType:       domain.RoastMedium,
		RoastDate:       day(14),
	})
	require.NoError(t, err)
	assertKg(t, "0", f.greenStock(g.ID))

	_, err = f.roasting.UpdateRoastedBatch(f.ctx, r.ID, ports.RoastInput{
		GreenBatchID:    g.ID,
		QuantityGreenKg: kg("100.01"),
		ResultantKg:     kg("85"),
		RoastType:       domain.RoastMedium,
		RoastDate:       day(14),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assertKg(t, "0", f.greenStock(g.ID))
	assertKg(t, "85", f.roastedStock(r.ID))
}

func TestUpdateRoastedBatch_KeepsConsumedMass(t *testing.T) {
	f := newFixture(t)
	g := f.greenBatch(f.origin("Kenya"), "KE-1", "100")
	r := f.roast(g, "50", "40")
	f.sell(roastedRef(r), "25")

	in := ports.RoastInput{
		GreenBatchID:    g.ID,
		QuantityGreenKg: kg("50"),
		ResultantKg:     kg("30"),
		RoastType:       domain.RoastMedium,
		RoastDate:       day(14),
	}
	updated, err := f.roasting.UpdateRoastedBatch(f.ctx, r.ID, in)
	require.NoError(t, err)
	assertKg(t, "5", updated.StockKg)

	in.ResultantKg = kg("20")
	_, err = f.roasting.UpdateRoastedBatch(f.ctx, r.ID, in)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	f.assertBalanced()
}

func TestUpdateRoastedBatch_OriginLockedByBlends(t *testing.T) {
	s := newBlendSetup(t, newFixture(t))
	other := s.greenBatch(s.ethiopia, "ET-002", "100")
	_, err := s.blending.CreateBlend(s.ctx, s.input("10",
		component(s.brazil.ID, "100", alloc(s.x, "10")),
	))
	require.NoError(t, err)

	_, err = s.roasting.UpdateRoastedBatch(s.ctx, s.x.ID, ports.RoastInput{
		GreenBatchID:    other.ID,
		QuantityGreenKg: kg("80"),
		ResultantKg:     kg("70"),
		RoastType:       domain.RoastMedium,
		RoastDate:       day(14),
	})
	assert.ErrorIs(t, err, domain.ErrDependencyExists)
	assertKg(t, "100", s.greenStock(other.ID))
}

func TestDeleteRoastedBatch(t *testing.T) {
	f := newFixture(t)
	g := f.greenBatch(f.origin("Peru"), "PE-1", "100")

	r := f.roast(g, "40", "34")
	require.NoError(t, f.roasting.DeleteRoastedBatch(f.ctx, r.ID))
	assertKg(t, "100", f.greenStock(g.ID))
	_, err := f.roasting.GetRoastedBatch(f.ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sold := f.roast(g, "40", "34")
	f.sell(roastedRef(sold), "1")
	err = f.roasting.DeleteRoastedBatch(f.ctx, sold.ID)

	var depErr *domain.DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "sales", depErr.Dependent)
	assert.Equal(t, 1, depErr.Count)
	assertKg(t, "60", f.greenStock(g.ID))
}

func TestDeleteRoastedBatch_BlockedByBlend(t *testing.T) {
	s := newBlendSetup(t, newFixture(t))
	_, err := s.blending.CreateBlend(s.ctx, s.input("10",
		component(s.brazil.ID, "100", alloc(s.x, "10")),
	))
	require.NoError(t, err)

	err = s.roasting.DeleteRoastedBatch(s.ctx, s.x.ID)
	assert.ErrorIs(t, err, domain.ErrDependencyExists)
}
