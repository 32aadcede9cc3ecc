package service_test

import (
	"testing"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greenInput(o *domain.Origin, code, qty string) ports.GreenBatchInput {
	return ports.GreenBatchInput{
		OriginID:       o.ID,
		SupplierOrFarm: o.SuppliersOrFarms[0],
		QuantityKg:     kg(qty),
		UnitPrice:      kg("5.10"),
		EntryDate:      day(2),
		BatchCode:      code,
	}
}

func TestAddGreenBatch(t *testing.T) {
	f := newFixture(t)
	o := f.origin("Honduras", "Finca Santa Rosa")

	g, err := f.green.AddGreenBatch(f.ctx, greenInput(o, "HN-22", "345.5"))
	require.NoError(t, err)
	assertKg(t, "345.5", g.ReceivedKg)
	assertKg(t, "345.5", g.QuantityKg)

	_, err = f.green.AddGreenBatch(f.ctx, greenInput(o, "HN-22", "10"))
	assert.ErrorIs(t, err, domain.ErrConflict)

	other := f.origin("Nicaragua")
	_, err = f.green.AddGreenBatch(f.ctx, greenInput(other, "HN-22", "10"))
	assert.NoError(t, err, "the same code under another origin is a different batch")

	in := greenInput(o, "HN-23", "10")
	in.SupplierOrFarm = "Someone Else"
	_, err = f.green.AddGreenBatch(f.ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.green.AddGreenBatch(f.ctx, greenInput(o, "HN-24", "0"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestUpdateGreenBatch_KeepsRoastedMass(t *testing.T) {
	f := newFixture(t)
	o := f.origin("Honduras")
	g := f.greenBatch(o, "HN-1", "100")
	f.roast(g, "70", "60")

	updated, err := f.green.UpdateGreenBatch(f.ctx, g.ID, greenInput(o, "HN-1", "90"))
	require.NoError(t, err)
	assertKg(t, "90", updated.ReceivedKg)
	assertKg(t, "20", updated.QuantityKg)
	f.assertBalanced()

	_, err = f.green.UpdateGreenBatch(f.ctx, g.ID, greenInput(o, "HN-1", "69"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.green.UpdateGreenBatch(f.ctx, g.ID, greenInput(f.origin("Panama"), "HN-1", "90"))
	assert.ErrorIs(t, err, domain.ErrDependencyExists)
	assertKg(t, "20", f.greenStock(g.ID))
}

func TestDeleteGreenBatch(t *testing.T) {
	f := newFixture(t)
	o := f.origin("Honduras")

	before, err := f.reports.StockSummary(f.ctx)
	require.NoError(t, err)

	g := f.greenBatch(o, "HN-1", "100")
	require.NoError(t, f.green.DeleteGreenBatch(f.ctx, g.ID))

	after, err := f.reports.StockSummary(f.ctx)
	require.NoError(t, err)
	assertKg(t, before.GreenKg.String(), after.GreenKg)

	roasted := f.greenBatch(o, "HN-2", "100")
	f.roast(roasted, "10", "8")
	err = f.green.DeleteGreenBatch(f.ctx, roasted.ID)
	assert.ErrorIs(t, err, domain.ErrDependencyExists)
}
