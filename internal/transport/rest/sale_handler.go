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
	"net/http"
	"strings"

	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader lets clients retry a sale without recording it twice.
const IdempotencyKeyHeader = "Idempotency-Key"

type SaleHandler struct {
	responder
	service ports.SalesService
}

func NewSaleHandler(s ports.SalesService, schemas *Schemas, log *zap.Logger) *SaleHandler {
	return &SaleHandler{responder: responder{log: log, schemas: schemas}, service: s}
}

func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sales", h.ListSales)
	r.Post("/sales", h.RecordSale)
	r.Get("/sales/products", h.ListSellableProducts)
	r.Get("/sales/{id}", h.GetSale)
	r.Put("/sales/{id}", h.UpdateSale)
	r.Delete("/sales/{id}", h.DeleteSale)
}

func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.ListSales(r.Context())
	if err != nil {
		h.fail(w, r, "list sales", err)
		return
	}
	h.ok(w, http.StatusOK, sales)
}

// ListSellableProducts handles GET /sales/products
func (h *SaleHandler) ListSellableProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListSellableProducts(r.Context())
	if err != nil {
		h.fail(w, r, "list sellable products", err)
		return
	}
	h.ok(w, http.StatusOK, products)
}

func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "get sale", err)
		return
	}
	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get sale", err)
		return
	}
	h.ok(w, http.StatusOK, sale)
}

func (h *SaleHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var in ports.SaleInput
	if err := h.decode(w, r, saleSchema, &in); err != nil {
		h.fail(w, r, "record sale", err)
		return
	}
	in.IdempotencyKey = strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))

	sale, err := h.service.RecordSale(r.Context(), in)
	if err != nil {
		h.fail(w, r, "record sale", err)
		return
	}
	h.ok(w, http.StatusCreated, sale)
}

func (h *SaleHandler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "update sale", err)
		return
	}
	var in ports.SaleInput
	if err := h.decode(w, r, saleSchema, &in); err != nil {
		h.fail(w, r, "update sale", err)
		return
	}
	sale, err := h.service.UpdateSale(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "update sale", err)
		return
	}
	h.ok(w, http.StatusOK, sale)
}

func (h *SaleHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "delete sale", err)
		return
	}
	if err := h.service.DeleteSale(r.Context(), id); err != nil {
		h.fail(w, r, "delete sale", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
