package ports

import (
	"context"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Inputs ---

type OriginInput struct {
	Name             string          `json:"name"`
	KilosPerBag      decimal.Decimal `json:"kilosPerBag"`
	SuppliersOrFarms []string        `json:"suppliersOrFarms"`
	Description      string          `json:"description"`
}

type GreenBatchInput struct {
	OriginID       uuid.UUID       `json:"originId"`
	SupplierOrFarm string          `json:"supplierOrFarm"`
	QuantityKg     decimal.Decimal `json:"quantityKg"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	EntryDate      domain.Date     `json:"entryDate"`
	BatchCode      string          `json:"batchCode"`
}

// RoastInput describes a roast. BatchCode is generated when empty.
type RoastInput struct {
	GreenBatchID    uuid.UUID        `json:"greenBatchId"`
	QuantityGreenKg decimal.Decimal  `json:"quantityGreenKg"`
	ResultantKg     decimal.Decimal  `json:"resultantKg"`
	RoastType       domain.RoastType `json:"roastType"`
	RoastDate       domain.Date      `json:"roastDate"`
	BatchCode       string           `json:"batchCode"`
}

type RecipeInput struct {
	Name       string                   `json:"name"`
	Components []domain.RecipeComponent `json:"components"`
}

// BlendInput describes a blend. BatchCode is generated when empty.
type BlendInput struct {
	Name            string                  `json:"name"`
	TotalQuantityKg decimal.Decimal         `json:"totalQuantityKg"`
	Components      []domain.BlendComponent `json:"components"`
	RecipeID        *uuid.UUID              `json:"recipeId,omitempty"`
	CreationDate    domain.Date             `json:"creationDate"`
	BatchCode       string                  `json:"batchCode"`
}

// SaleInput describes a sale. A non-empty IdempotencyKey makes retries of the
// same request return the first sale instead of deducting again.
type SaleInput struct {
	Product        domain.ProductRef `json:"product"`
	QuantityKg     decimal.Decimal   `json:"quantityKg"`
	UnitPrice      decimal.Decimal   `json:"unitPrice"`
	SaleDate       domain.Date       `json:"saleDate"`
	IdempotencyKey string            `json:"-"`
}

// --- Services ---

type OriginService interface {
	ListOrigins(ctx context.Context) ([]*domain.Origin, error)
	GetOrigin(ctx context.Context, id uuid.UUID) (*domain.Origin, error)
	AddOrigin(ctx context.Context, in OriginInput) (*domain.Origin, error)
	UpdateOrigin(ctx context.Context, id uuid.UUID, in OriginInput) (*domain.Origin, error)
	DeleteOrigin(ctx context.Context, id uuid.UUID) error
}

type GreenCoffeeService interface {
	ListGreenBatches(ctx context.Context) ([]*domain.GreenBatch, error)
	GetGreenBatch(ctx context.Context, id uuid.UUID) (*domain.GreenBatch, error)
	AddGreenBatch(ctx context.Context, in GreenBatchInput) (*domain.GreenBatch, error)
	UpdateGreenBatch(ctx context.Context, id uuid.UUID, in GreenBatchInput) (*domain.GreenBatch, error)
	DeleteGreenBatch(ctx context.Context, id uuid.UUID) error
}

type RoastingService interface {
	ListRoastedBatches(ctx context.Context) ([]*domain.RoastedBatch, error)
	GetRoastedBatch(ctx context.Context, id uuid.UUID) (*domain.RoastedBatch, error)
	RoastCoffee(ctx context.Context, in RoastInput) (*domain.RoastedBatch, error)
	UpdateRoastedBatch(ctx context.Context, id uuid.UUID, in RoastInput) (*domain.RoastedBatch, error)
	DeleteRoastedBatch(ctx context.Context, id uuid.UUID) error
}

type RecipeService interface {
	ListRecipes(ctx context.Context) ([]*domain.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
	AddRecipe(ctx context.Context, in RecipeInput) (*domain.Recipe, error)
	UpdateRecipe(ctx context.Context, id uuid.UUID, in RecipeInput) (*domain.Recipe, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
}

type BlendingService interface {
	ListBlendedBatches(ctx context.Context) ([]*domain.BlendedBatch, error)
	GetBlendedBatch(ctx context.Context, id uuid.UUID) (*domain.BlendedBatch, error)

	// PlanBlend pre-fills components from a recipe for a blend of totalKg.
	PlanBlend(ctx context.Context, recipeID uuid.UUID, totalKg decimal.Decimal) (*domain.BlendPlan, error)

	CreateBlend(ctx context.Context, in BlendInput) (*domain.BlendedBatch, error)
	UpdateBlendedBatch(ctx context.Context, id uuid.UUID, in BlendInput) (*domain.BlendedBatch, error)
	DeleteBlendedBatch(ctx context.Context, id uuid.UUID) error
}

type SalesService interface {
	ListSales(ctx context.Context) ([]*domain.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	ListSellableProducts(ctx context.Context) ([]domain.SellableProduct, error)
	RecordSale(ctx context.Context, in SaleInput) (*domain.Sale, error)
	UpdateSale(ctx context.Context, id uuid.UUID, in SaleInput) (*domain.Sale, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
}

type ReportService interface {
	StockSummary(ctx context.Context) (*domain.StockSummary, error)
	MonthlySales(ctx context.Context) ([]domain.MonthlySales, error)
	TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error)
	MassBalance(ctx context.Context) (*domain.MassBalance, error)
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
}

type LineageService interface {
	// Trace resolves a roasted or blended batch code. The view (public or
	// restricted) is read from the context.
	Trace(ctx context.Context, batchCode string) (*domain.Lineage, error)
}
