package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/TraceApi/roastery-core/internal/core/service"
	"github.com/TraceApi/roastery-core/internal/platform/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) PublishMovements(ctx context.Context, moves []domain.StockMovement) error {
	args := m.Called(ctx, moves)
	return args.Error(0)
}

func TestRoastCoffee_PublishesMovementsAfterCommit(t *testing.T) {
	ctx := context.Background()
	events := new(MockEventBus)
	deps := service.Dependencies{Store: memory.NewStore(), Events: events, Suffix: func() int { return 1234 }}
	origins := service.NewOriginService(deps)
	green := service.NewGreenCoffeeService(deps)
	roasting := service.NewRoastingService(deps)

	o, err := origins.AddOrigin(ctx, ports.OriginInput{Name: "Ethiopia", KilosPerBag: kg("60"), SuppliersOrFarms: []string{"Guji"}})
	require.NoError(t, err)

	events.On("PublishMovements", mock.Anything, mock.MatchedBy(func(moves []domain.StockMovement) bool {
		return len(moves) == 1 && moves[0].Stage == domain.StageGreen && moves[0].DeltaKg.Equal(kg("100"))
	})).Return(nil).Once()
	g, err := green.AddGreenBatch(ctx, ports.GreenBatchInput{
		OriginID: o.ID, SupplierOrFarm: "Guji", QuantityKg: kg("100"), UnitPrice: kg("7"), EntryDate: day(1), BatchCode: "GU-1",
	})
	require.NoError(t, err)

	var published []domain.StockMovement
	events.On("PublishMovements", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		published = args.Get(1).([]domain.StockMovement)
	}).Return(errors.New("redis down")).Once()

	// A failed publish does not fail the committed roast.
	r, err := roasting.RoastCoffee(ctx, ports.RoastInput{
		GreenBatchID: g.ID, QuantityGreenKg: kg("40"), ResultantKg: kg("33"), RoastType: domain.RoastLight, RoastDate: day(3),
	})
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, domain.StageGreen, published[0].Stage)
	assertKg(t, "-40", published[0].DeltaKg)
	assert.Equal(t, domain.StageRoasted, published[1].Stage)
	assert.Equal(t, r.BatchCode, published[1].BatchCode)
	assert.Equal(t, "roast", published[1].Operation)

	// Rejected operations publish nothing.
	_, err = roasting.RoastCoffee(ctx, ports.RoastInput{
		GreenBatchID: g.ID, QuantityGreenKg: kg("61"), ResultantKg: kg("50"), RoastType: domain.RoastDark, RoastDate: day(4),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	events.AssertExpectations(t)
}
