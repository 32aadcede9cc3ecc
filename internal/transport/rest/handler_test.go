package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/TraceApi/roastery-core/internal/core/service"
	"github.com/TraceApi/roastery-core/internal/platform/storage/memory"
	"github.com/TraceApi/roastery-core/internal/transport/rest"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Helpers ---

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	deps := service.Dependencies{Store: memory.NewStore(), Logger: zap.NewNop()}
	svc := rest.Services{
		Origins:  service.NewOriginService(deps),
		Green:    service.NewGreenCoffeeService(deps),
		Roasting: service.NewRoastingService(deps),
		Recipes:  service.NewRecipeService(deps),
		Blending: service.NewBlendingService(deps),
		Sales:    service.NewSalesService(deps),
		Reports:  service.NewReportService(deps),
	}
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		rest.RegisterInventoryRoutes(r, svc, rest.MustSchemas(), zap.NewNop())
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeAs[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type errorBody struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Details *struct {
		AvailableKg string `json:"availableKg"`
		RequestedKg string `json:"requestedKg"`
		ShortfallKg string `json:"shortfallKg"`
	} `json:"details"`
}

// seedRoast creates an origin, a 100 kg green lot and a roast of 80 kg green
// into 70 kg roasted.
func seedRoast(t *testing.T, h http.Handler) (domain.Origin, domain.RoastedBatch) {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/v1/origins", map[string]any{
		"name": "Brazil", "kilosPerBag": 60, "suppliersOrFarms": []string{"Fazenda Santa Ines"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	origin := decodeAs[domain.Origin](t, rr)

	rr = do(t, h, http.MethodPost, "/v1/green-batches", map[string]any{
		"originId": origin.ID, "supplierOrFarm": "Fazenda Santa Ines", "quantityKg": "100",
		"unitPrice": "6.40", "entryDate": "2025-03-01", "batchCode": "GB-001",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	green := decodeAs[domain.GreenBatch](t, rr)

	rr = do(t, h, http.MethodPost, "/v1/roasted-batches", map[string]any{
		"greenBatchId": green.ID, "quantityGreenKg": 80, "resultantKg": 70,
		"roastType": "medium", "roastDate": "2025-03-14",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return origin, decodeAs[domain.RoastedBatch](t, rr)
}

// --- Tests ---

func TestOriginLifecycle(t *testing.T) {
	h := newRouter(t)
	origin, _ := seedRoast(t, h)

	rr := do(t, h, http.MethodGet, "/v1/origins/"+origin.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Brazil", decodeAs[domain.Origin](t, rr).Name)

	rr = do(t, h, http.MethodGet, "/v1/origins", nil)
	assert.Len(t, decodeAs[[]domain.Origin](t, rr), 1)

	rr = do(t, h, http.MethodDelete, "/v1/origins/"+origin.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "dependency_exists", decodeAs[errorBody](t, rr).Kind)
}

func TestRejectsInvalidBodies(t *testing.T) {
	h := newRouter(t)

	rr := do(t, h, http.MethodPost, "/v1/origins", map[string]any{
		"name": "Kenya", "suppliersOrFarms": []string{"Gatomboya"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeAs[errorBody](t, rr)
	assert.Equal(t, "invalid_input", body.Kind)
	assert.Contains(t, body.Error, "kilosPerBag")

	rr = do(t, h, http.MethodPost, "/v1/roasted-batches", map[string]any{
		"greenBatchId": uuid.New(), "quantityGreenKg": 10, "resultantKg": 8,
		"roastType": "burnt", "roastDate": "2025-03-14",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/v1/sales", map[string]any{"unexpected": true})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestResourceLookupErrors(t *testing.T) {
	h := newRouter(t)

	rr := do(t, h, http.MethodGet, "/v1/blends/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decodeAs[errorBody](t, rr).Kind)

	rr = do(t, h, http.MethodGet, "/v1/sales/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/v1/reports/top-products?n=0", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRecordSale_InsufficientStockReportsShortfall(t *testing.T) {
	h := newRouter(t)
	_, roast := seedRoast(t, h)

	rr := do(t, h, http.MethodPost, "/v1/sales", map[string]any{
		"product":    map[string]any{"productType": "roasted", "productId": roast.ID},
		"quantityKg": "80", "unitPrice": "24", "saleDate": "2025-03-20",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	body := decodeAs[errorBody](t, rr)
	assert.Equal(t, "insufficient_stock", body.Kind)
	require.NotNil(t, body.Details)
	assert.Equal(t, "70.00", body.Details.AvailableKg)
	assert.Equal(t, "10.00", body.Details.ShortfallKg)

	rr = do(t, h, http.MethodPost, "/v1/sales", map[string]any{
		"product":    map[string]any{"productType": "roasted", "productId": roast.ID},
		"quantityKg": "30", "unitPrice": "24", "saleDate": "2025-03-20",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, roast.BatchCode, decodeAs[domain.Sale](t, rr).BatchCodeSold)

	rr = do(t, h, http.MethodGet, "/v1/reports/stock", nil)
	stock := decodeAs[domain.StockSummary](t, rr)
	assert.True(t, decimal.NewFromInt(40).Equal(stock.RoastedKg), stock.RoastedKg.String())
	assert.True(t, decimal.NewFromInt(20).Equal(stock.GreenKg), stock.GreenKg.String())

	rr = do(t, h, http.MethodGet, "/v1/reports/mass-balance", nil)
	assert.True(t, decodeAs[domain.MassBalance](t, rr).Balanced)
}

func TestPlanAndCreateBlend(t *testing.T) {
	h := newRouter(t)
	origin, roast := seedRoast(t, h)

	rr := do(t, h, http.MethodPost, "/v1/recipes", map[string]any{
		"name":       "House",
		"components": []map[string]any{{"originId": origin.ID, "percentage": 100}},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	recipe := decodeAs[domain.Recipe](t, rr)

	rr = do(t, h, http.MethodGet, fmt.Sprintf("/v1/blends/plan?recipeId=%s&totalKg=10", recipe.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	plan := decodeAs[domain.BlendPlan](t, rr)
	require.Len(t, plan.Components, 1)
	assert.True(t, decimal.NewFromInt(10).Equal(plan.Components[0].RequiredKg))
	require.Len(t, plan.Components[0].Candidates, 1)
	assert.Equal(t, roast.ID, plan.Components[0].Candidates[0].ID)

	rr = do(t, h, http.MethodPost, "/v1/blends", map[string]any{
		"name": "House", "totalQuantityKg": 10, "recipeId": recipe.ID, "creationDate": "2025-03-15",
		"components": []map[string]any{{
			"originId": origin.ID, "percentage": 100,
			"selectedAllocations": []map[string]any{{"roastedBatchId": roast.ID, "quantityUsedKg": 10}},
		}},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	blend := decodeAs[domain.BlendedBatch](t, rr)

	rr = do(t, h, http.MethodGet, "/v1/roasted-batches/"+roast.ID.String(), nil)
	assert.True(t, decimal.NewFromInt(60).Equal(decodeAs[domain.RoastedBatch](t, rr).StockKg))

	rr = do(t, h, http.MethodGet, "/v1/sales/products", nil)
	assert.Len(t, decodeAs[[]domain.SellableProduct](t, rr), 2)

	rr = do(t, h, http.MethodDelete, "/v1/blends/"+blend.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/v1/roasted-batches/"+roast.ID.String(), nil)
	assert.True(t, decimal.NewFromInt(70).Equal(decodeAs[domain.RoastedBatch](t, rr).StockKg))
}

// --- Mocks ---

type MockSalesService struct {
	mock.Mock
}

func (m *MockSalesService) ListSales(ctx context.Context) ([]*domain.Sale, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.Sale), args.Error(1)
}

func (m *MockSalesService) GetSale(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSalesService) ListSellableProducts(ctx context.Context) ([]domain.SellableProduct, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.SellableProduct), args.Error(1)
}

func (m *MockSalesService) RecordSale(ctx context.Context, in ports.SaleInput) (*domain.Sale, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSalesService) UpdateSale(ctx context.Context, id uuid.UUID, in ports.SaleInput) (*domain.Sale, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSalesService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func saleRouter(svc ports.SalesService) http.Handler {
	r := chi.NewRouter()
	rest.NewSaleHandler(svc, rest.MustSchemas(), zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestRecordSale_PassesIdempotencyKey(t *testing.T) {
	mockSvc := new(MockSalesService)
	productID := uuid.New()
	mockSvc.On("RecordSale", mock.Anything, mock.MatchedBy(func(in ports.SaleInput) bool {
		return in.IdempotencyKey == "order-1187" && in.Product.ID == productID
	})).Return(&domain.Sale{ID: uuid.New()}, nil)

	rr := do(t, saleRouter(mockSvc), http.MethodPost, "/sales", map[string]any{
		"product":    map[string]any{"productType": "blended", "productId": productID},
		"quantityKg": 2, "saleDate": "2025-03-20",
	}, rest.IdempotencyKeyHeader, " order-1187 ")

	assert.Equal(t, http.StatusCreated, rr.Code)
	mockSvc.AssertExpectations(t)
}

func TestInternalErrorsAreMasked(t *testing.T) {
	mockSvc := new(MockSalesService)
	mockSvc.On("DeleteSale", mock.Anything, mock.Anything).
		Return(fmt.Errorf("delete sale: %w", domain.ErrOperationFailed))

	rr := do(t, saleRouter(mockSvc), http.MethodDelete, "/sales/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeAs[errorBody](t, rr)
	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, "internal", body.Kind)
}
