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

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BlendHandler struct {
	responder
	service ports.BlendingService
}

func NewBlendHandler(s ports.BlendingService, schemas *Schemas, log *zap.Logger) *BlendHandler {
	return &BlendHandler{responder: responder{log: log, schemas: schemas}, service: s}
}

func (h *BlendHandler) RegisterRoutes(r chi.Router) {
	r.Get("/blends", h.ListBlends)
	r.Post("/blends", h.CreateBlend)
	r.Get("/blends/plan", h.PlanBlend)
	r.Get("/blends/{id}", h.GetBlend)
	r.Put("/blends/{id}", h.UpdateBlend)
	r.Delete("/blends/{id}", h.DeleteBlend)
}

func (h *BlendHandler) ListBlends(w http.ResponseWriter, r *http.Request) {
	blends, err := h.service.ListBlendedBatches(r.Context())
	if err != nil {
		h.fail(w, r, "list blends", err)
		return
	}
	h.ok(w, http.StatusOK, blends)
}

func (h *BlendHandler) GetBlend(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "get blend", err)
		return
	}
	blend, err := h.service.GetBlendedBatch(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get blend", err)
		return
	}
	h.ok(w, http.StatusOK, blend)
}

// PlanBlend handles GET /blends/plan?recipeId=...&totalKg=...
func (h *BlendHandler) PlanBlend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recipeID, err := uuid.Parse(q.Get("recipeId"))
	if err != nil {
		h.fail(w, r, "plan blend", fmt.Errorf("%w: recipeId must be a uuid", domain.ErrInvalidInput))
		return
	}
	totalKg, err := decimal.NewFromString(q.Get("totalKg"))
	if err != nil {
		h.fail(w, r, "plan blend", fmt.Errorf("%w: totalKg must be a number", domain.ErrInvalidInput))
		return
	}

	plan, err := h.service.PlanBlend(r.Context(), recipeID, totalKg)
	if err != nil {
		h.fail(w, r, "plan blend", err)
		return
	}
	h.ok(w, http.StatusOK, plan)
}

// CreateBlend handles POST /blends. Every allocation is deducted from its
// roasted batch or nothing is.
func (h *BlendHandler) CreateBlend(w http.ResponseWriter, r *http.Request) {
	var in ports.BlendInput
	if err := h.decode(w, r, blendSchema, &in); err != nil {
		h.fail(w, r, "create blend", err)
		return
	}
	blend, err := h.service.CreateBlend(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create blend", err)
		return
	}
	h.ok(w, http.StatusCreated, blend)
}

func (h *BlendHandler) UpdateBlend(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "update blend", err)
		return
	}
	var in ports.BlendInput
	if err := h.decode(w, r, blendSchema, &in); err != nil {
		h.fail(w, r, "update blend", err)
		return
	}
	blend, err := h.service.UpdateBlendedBatch(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "update blend", err)
		return
	}
	h.ok(w, http.StatusOK, blend)
}

func (h *BlendHandler) DeleteBlend(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "delete blend", err)
		return
	}
	if err := h.service.DeleteBlendedBatch(r.Context(), id); err != nil {
		h.fail(w, r, "delete blend", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
