package ports

import (
	"context"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repositories return domain.ErrNotFound (wrapped) for unknown ids.

type OriginRepository interface {
	List(ctx context.Context) ([]*domain.Origin, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Origin, error)
	Create(ctx context.Context, origin *domain.Origin) error
	Update(ctx context.Context, origin *domain.Origin) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GreenBatchRepository interface {
	List(ctx context.Context) ([]*domain.GreenBatch, error)
	ListByOrigin(ctx context.Context, originID uuid.UUID) ([]*domain.GreenBatch, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GreenBatch, error)

	// FindByCode looks up the batch with the given (batch code, origin) pair.
	FindByCode(ctx context.Context, batchCode string, originID uuid.UUID) (*domain.GreenBatch, error)

	Create(ctx context.Context, batch *domain.GreenBatch) error
	Update(ctx context.Context, batch *domain.GreenBatch) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AdjustStock adds delta (negative to consume) to the remaining quantity.
	// It fails with domain.ErrInsufficientStock rather than go below zero.
	AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}

type RoastedBatchRepository interface {
	List(ctx context.Context) ([]*domain.RoastedBatch, error)
	ListByGreenBatch(ctx context.Context, greenBatchID uuid.UUID) ([]*domain.RoastedBatch, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RoastedBatch, error)
	GetByCode(ctx context.Context, batchCode string) (*domain.RoastedBatch, error)
	Create(ctx context.Context, batch *domain.RoastedBatch) error
	Update(ctx context.Context, batch *domain.RoastedBatch) error
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}

type RecipeRepository interface {
	List(ctx context.Context) ([]*domain.Recipe, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
	Create(ctx context.Context, recipe *domain.Recipe) error
	Update(ctx context.Context, recipe *domain.Recipe) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByOrigin(ctx context.Context, originID uuid.UUID) (int, error)
}

type BlendedBatchRepository interface {
	List(ctx context.Context) ([]*domain.BlendedBatch, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BlendedBatch, error)
	GetByCode(ctx context.Context, batchCode string) (*domain.BlendedBatch, error)

	// Create and Update persist the blend together with its component tree.
	Create(ctx context.Context, blend *domain.BlendedBatch) error
	Update(ctx context.Context, blend *domain.BlendedBatch) error

	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error

	// CountAllocations counts the blend allocations drawing on a roasted batch.
	CountAllocations(ctx context.Context, roastedBatchID uuid.UUID) (int, error)

	// ClearRecipe detaches every blend from a recipe that is being deleted.
	ClearRecipe(ctx context.Context, recipeID uuid.UUID) error
}

type SaleRepository interface {
	List(ctx context.Context) ([]*domain.Sale, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	Create(ctx context.Context, sale *domain.Sale) error
	Update(ctx context.Context, sale *domain.Sale) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByProduct(ctx context.Context, ref domain.ProductRef) (int, error)
}

type ReportRepository interface {
	StockSummary(ctx context.Context) (*domain.StockSummary, error)

	// MonthlySales returns revenue per month, oldest first.
	MonthlySales(ctx context.Context) ([]domain.MonthlySales, error)

	// TopProducts returns the batch codes with the most kilos sold, best first.
	TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error)

	MassBalance(ctx context.Context) (*domain.MassBalance, error)
}

// Repositories is the set of record stores, bound either to the store itself
// or to an open unit of work.
type Repositories interface {
	Origins() OriginRepository
	GreenBatches() GreenBatchRepository
	RoastedBatches() RoastedBatchRepository
	Recipes() RecipeRepository
	BlendedBatches() BlendedBatchRepository
	Sales() SaleRepository
	Reports() ReportRepository
}

// Store runs stock mutations atomically. If fn returns an error nothing it did
// through repos is kept.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
