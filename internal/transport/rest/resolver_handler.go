/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/TraceApi/roastery-core/internal/config"
	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/TraceApi/roastery-core/internal/transport/rest/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
	tokenTTL      = time.Hour
)

var lineagePage = template.Must(template.New("lineage").Parse(`<!DOCTYPE html>
<html>
<head>
	<title>{{.BatchCode}}</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<style>
		body { font-family: sans-serif; padding: 20px; max-width: 640px; margin: 0 auto; }
		.card { border: 1px solid #ddd; border-radius: 8px; padding: 20px; margin-bottom: 12px; }
		.stage { display: inline-block; padding: 4px 8px; border-radius: 4px; background: #efebe9; color: #4e342e; font-size: 0.8em; font-weight: bold; }
		h1 { font-size: 1.2em; margin-top: 0; }
	</style>
</head>
<body>
	<div class="card">
		<span class="stage">{{.Stage}}</span>
		<h1>{{if .Name}}{{.Name}} {{end}}{{.BatchCode}}</h1>
		<p>{{.Date}} &middot; {{.QuantityKg.StringFixed 2}} kg</p>
	</div>
	{{range .Components}}
	<div class="card">
		<h2>{{.OriginName}} &middot; {{.Percentage.String}}%</h2>
		<ul>
		{{range .Sources}}
			<li>{{.RoastedBatchCode}} ({{.RoastType}}, {{.RoastDate}}): {{.QuantityUsedKg.StringFixed 2}} kg from green lot {{.GreenBatchCode}} received {{.EntryDate}}{{if .SupplierOrFarm}}, {{.SupplierOrFarm}}{{end}}</li>
		{{end}}
		</ul>
	</div>
	{{end}}
</body>
</html>
`))

// ResolverHandler serves the public traceability lookup behind batch QR labels.
type ResolverHandler struct {
	responder
	lineage  ports.LineageService
	authRepo ports.AuthRepository
	cfg      *config.Config
}

func NewResolverHandler(lineage ports.LineageService, authRepo ports.AuthRepository, log *zap.Logger, cfg *config.Config) *ResolverHandler {
	return &ResolverHandler{responder: responder{log: log}, lineage: lineage, authRepo: authRepo, cfg: cfg}
}

func (h *ResolverHandler) RegisterResolverRoutes(r chi.Router) {
	r.Get("/r/{code}", h.ResolveBatch)
	r.Get("/r/{code}/qr", h.GetQRCode)
	r.Post("/auth/token", h.ExchangeToken)
}

// viewContext upgrades the request to a restricted view when it carries a
// valid API key or operator JWT. Bad credentials fall back to the public view.
func (h *ResolverHandler) viewContext(r *http.Request) context.Context {
	ctx := r.Context()
	tokenString, ok := middleware.BearerToken(r)
	if !ok {
		return ctx
	}

	if strings.HasPrefix(tokenString, middleware.APIKeyPrefix) {
		if h.authRepo == nil {
			return ctx
		}
		viewerID, valid, err := h.authRepo.ValidateKey(ctx, middleware.HashAPIKey(tokenString))
		if err != nil {
			h.log.Warn("failed to validate api key", zap.Error(err))
			return ctx
		}
		if valid {
			return middleware.WithViewer(ctx, viewerID)
		}
		return ctx
	}

	sub, err := middleware.ParseToken(h.cfg.JWTSecret, tokenString)
	if err != nil {
		return ctx
	}
	return middleware.WithViewer(ctx, sub)
}

// ResolveBatch handles GET /r/{code}. Browsers get HTML, everything else JSON.
func (h *ResolverHandler) ResolveBatch(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	lineage, err := h.lineage.Trace(h.viewContext(r), code)
	if err != nil {
		h.fail(w, r, "resolve batch", err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := lineagePage.Execute(w, lineage); err != nil {
			h.log.Error("failed to render lineage page", zap.String("batch_code", code), zap.Error(err))
		}
		return
	}
	h.ok(w, http.StatusOK, lineage)
}

// GetQRCode handles GET /r/{code}/qr?size=256 and returns a PNG that points
// at the public resolver URL of the batch.
func (h *ResolverHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		h.fail(w, r, "qr code", fmt.Errorf("%w: batch code is required", domain.ErrInvalidInput))
		return
	}

	size := defaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > maxQRSize {
			h.fail(w, r, "qr code", fmt.Errorf("%w: size must be between 64 and %d", domain.ErrInvalidInput, maxQRSize))
			return
		}
		size = n
	}

	png, err := qrcode.Encode(h.ResolverURL(code), qrcode.Medium, size)
	if err != nil {
		h.fail(w, r, "qr code", err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		h.log.Warn("failed to write qr code", zap.Error(err))
	}
}

// ResolverURL is the public URL encoded in a batch label.
func (h *ResolverHandler) ResolverURL(code string) string {
	return fmt.Sprintf("%s/r/%s", h.cfg.PublicBaseURL, url.PathEscape(code))
}

type ExchangeRequest struct {
	APIKey string `json:"apiKey"`
}

type ExchangeResponse struct {
	Token string `json:"token"`
}

// ExchangeToken trades an API key for a short-lived JWT.
func (h *ResolverHandler) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.APIKey == "" {
		http.Error(w, "API key is required", http.StatusBadRequest)
		return
	}
	if h.authRepo == nil {
		http.Error(w, "API keys are not enabled", http.StatusServiceUnavailable)
		return
	}

	viewerID, valid, err := h.authRepo.ValidateKey(r.Context(), middleware.HashAPIKey(req.APIKey))
	if err != nil {
		h.log.Error("failed to validate key", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !valid {
		http.Error(w, "invalid API key", http.StatusUnauthorized)
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": viewerID,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		h.log.Error("failed to sign token", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.ok(w, http.StatusOK, ExchangeResponse{Token: tokenString})
}
