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
	"fmt"
	"net/http"
	"strconv"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReportHandler struct {
	responder
	service ports.ReportService
}

func NewReportHandler(s ports.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{responder: responder{log: log}, service: s}
}

func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/stock", h.StockSummary)
		r.Get("/monthly-sales", h.MonthlySales)
		r.Get("/top-products", h.TopProducts)
		r.Get("/mass-balance", h.MassBalance)
		r.Get("/dashboard", h.Dashboard)
	})
}

func (h *ReportHandler) StockSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.StockSummary(r.Context())
	if err != nil {
		h.fail(w, r, "stock summary", err)
		return
	}
	h.ok(w, http.StatusOK, summary)
}

func (h *ReportHandler) MonthlySales(w http.ResponseWriter, r *http.Request) {
	months, err := h.service.MonthlySales(r.Context())
	if err != nil {
		h.fail(w, r, "monthly sales", err)
		return
	}
	h.ok(w, http.StatusOK, months)
}

// TopProducts handles GET /reports/top-products?n=5
func (h *ReportHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.fail(w, r, "top products", fmt.Errorf("%w: n must be a positive integer", domain.ErrInvalidInput))
			return
		}
		limit = n
	}
	top, err := h.service.TopProducts(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "top products", err)
		return
	}
	h.ok(w, http.StatusOK, top)
}

func (h *ReportHandler) MassBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.MassBalance(r.Context())
	if err != nil {
		h.fail(w, r, "mass balance", err)
		return
	}
	h.ok(w, http.StatusOK, balance)
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, "dashboard", err)
		return
	}
	h.ok(w, http.StatusOK, dashboard)
}
