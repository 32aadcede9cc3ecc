package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TraceApi/roastery-core/internal/config"
	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/TraceApi/roastery-core/internal/core/service"
	"github.com/TraceApi/roastery-core/internal/platform/storage/memory"
	"github.com/TraceApi/roastery-core/internal/transport/rest"
	"github.com/TraceApi/roastery-core/internal/transport/rest/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) ValidateKey(ctx context.Context, keyHash string) (string, bool, error) {
	args := m.Called(ctx, keyHash)
	return args.String(0), args.Bool(1), args.Error(2)
}

var testCfg = &config.Config{JWTSecret: "test-secret", PublicBaseURL: "https://trace.example.com"}

// newResolver seeds one roast and returns the resolver router and its batch code.
func newResolver(t *testing.T, auth ports.AuthRepository) (http.Handler, string) {
	t.Helper()
	ctx := context.Background()
	deps := service.Dependencies{Store: memory.NewStore(), Logger: zap.NewNop(), Suffix: func() int { return 1234 }}

	origin, err := service.NewOriginService(deps).AddOrigin(ctx, ports.OriginInput{
		Name: "Ethiopia", KilosPerBag: decimal.NewFromInt(60), SuppliersOrFarms: []string{"Yirgacheffe Union"},
	})
	require.NoError(t, err)
	green, err := service.NewGreenCoffeeService(deps).AddGreenBatch(ctx, ports.GreenBatchInput{
		OriginID: origin.ID, SupplierOrFarm: "Yirgacheffe Union", QuantityKg: decimal.NewFromInt(50),
		UnitPrice: decimal.RequireFromString("7.10"), EntryDate: domain.NewDate(2025, 3, 1), BatchCode: "ET-LOT-7",
	})
	require.NoError(t, err)
	roast, err := service.NewRoastingService(deps).RoastCoffee(ctx, ports.RoastInput{
		GreenBatchID: green.ID, QuantityGreenKg: decimal.NewFromInt(20), ResultantKg: decimal.NewFromInt(17),
		RoastType: domain.RoastLight, RoastDate: domain.NewDate(2025, 3, 14),
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	rest.NewResolverHandler(service.NewLineageService(deps), auth, zap.NewNop(), testCfg).RegisterResolverRoutes(r)
	return r, roast.BatchCode
}

func signedToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub, "exp": time.Now().Add(time.Hour).Unix()})
	s, err := token.SignedString([]byte(testCfg.JWTSecret))
	require.NoError(t, err)
	return s
}

func resolve(t *testing.T, h http.Handler, code, bearer string) domain.Lineage {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/r/"+code, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var lineage domain.Lineage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &lineage))
	return lineage
}

func TestResolveBatch_PublicHidesSupplier(t *testing.T) {
	h, code := newResolver(t, nil)
	assert.Equal(t, "ET-140325-1234", code)

	lineage := resolve(t, h, code, "")
	assert.Equal(t, domain.ViewContextPublic, lineage.View)
	require.Len(t, lineage.Components, 1)
	source := lineage.Components[0].Sources[0]
	assert.Equal(t, "ET-LOT-7", source.GreenBatchCode)
	assert.Empty(t, source.SupplierOrFarm)
	assert.Nil(t, source.GreenUnitPrice)
}

func TestResolveBatch_RestrictedWithJWT(t *testing.T) {
	h, code := newResolver(t, nil)

	lineage := resolve(t, h, code, signedToken(t, "roaster-1"))
	assert.Equal(t, domain.ViewContextRestricted, lineage.View)
	assert.Equal(t, "Yirgacheffe Union", lineage.Components[0].Sources[0].SupplierOrFarm)

	// A forged token silently falls back to the public view.
	lineage = resolve(t, h, code, "not-a-token")
	assert.Equal(t, domain.ViewContextPublic, lineage.View)
}

func TestResolveBatch_RestrictedWithAPIKey(t *testing.T) {
	auth := new(MockAuthRepo)
	key := middleware.APIKeyPrefix + "abc123"
	auth.On("ValidateKey", mock.Anything, middleware.HashAPIKey(key)).Return("cafe-42", true, nil)
	h, code := newResolver(t, auth)

	lineage := resolve(t, h, code, key)
	assert.Equal(t, domain.ViewContextRestricted, lineage.View)
	auth.AssertExpectations(t)
}

func TestResolveBatch_HTMLAndNotFound(t *testing.T) {
	h, code := newResolver(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/r/"+code, nil)
	req.Header.Set("Accept", "text/html")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "ET-LOT-7")
	assert.NotContains(t, rr.Body.String(), "Yirgacheffe Union")

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/r/NOPE-000000-0000", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetQRCode(t *testing.T) {
	h, code := newResolver(t, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/r/"+code+"/qr", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/r/"+code+"/qr?size=5000", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestResolverURL(t *testing.T) {
	handler := rest.NewResolverHandler(nil, nil, zap.NewNop(), testCfg)
	assert.Equal(t, "https://trace.example.com/r/HO-MZ-150325-4242", handler.ResolverURL("HO-MZ-150325-4242"))
}

func TestExchangeToken(t *testing.T) {
	auth := new(MockAuthRepo)
	h, _ := newResolver(t, auth)

	t.Run("Valid API Key", func(t *testing.T) {
		auth.On("ValidateKey", mock.Anything, middleware.HashAPIKey("roastery_valid")).Return("cafe-42", true, nil).Once()

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"apiKey":"roastery_valid"}`)))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp rest.ExchangeResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		sub, err := middleware.ParseToken(testCfg.JWTSecret, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "cafe-42", sub)
	})

	t.Run("Unknown API Key", func(t *testing.T) {
		auth.On("ValidateKey", mock.Anything, middleware.HashAPIKey("roastery_bad")).Return("", false, nil).Once()

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"apiKey":"roastery_bad"}`)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Missing API Key", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
