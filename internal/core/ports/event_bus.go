package ports

import (
	"context"

	"github.com/TraceApi/roastery-core/internal/core/domain"
)

// EventBus publishes committed stock movements. Delivery is best effort.
type EventBus interface {
	PublishMovements(ctx context.Context, moves []domain.StockMovement) error
}
