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

	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RoastHandler struct {
	responder
	service ports.RoastingService
}

func NewRoastHandler(s ports.RoastingService, schemas *Schemas, log *zap.Logger) *RoastHandler {
	return &RoastHandler{responder: responder{log: log, schemas: schemas}, service: s}
}

func (h *RoastHandler) RegisterRoutes(r chi.Router) {
	r.Get("/roasted-batches", h.ListRoastedBatches)
	r.Post("/roasted-batches", h.RoastCoffee)
	r.Get("/roasted-batches/{id}", h.GetRoastedBatch)
	r.Put("/roasted-batches/{id}", h.UpdateRoastedBatch)
	r.Delete("/roasted-batches/{id}", h.DeleteRoastedBatch)
}

func (h *RoastHandler) ListRoastedBatches(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListRoastedBatches(r.Context())
	if err != nil {
		h.fail(w, r, "list roasted batches", err)
		return
	}
	h.ok(w, http.StatusOK, items)
}

func (h *RoastHandler) GetRoastedBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "get roasted batch", err)
		return
	}
	item, err := h.service.GetRoastedBatch(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get roasted batch", err)
		return
	}
	h.ok(w, http.StatusOK, item)
}

// RoastCoffee handles POST /roasted-batches. The green input is deducted from
// the source lot in the same transaction.
func (h *RoastHandler) RoastCoffee(w http.ResponseWriter, r *http.Request) {
	var in ports.RoastInput
	if err := h.decode(w, r, roastSchema, &in); err != nil {
		h.fail(w, r, "add roasted batch", err)
		return
	}
	item, err := h.service.RoastCoffee(r.Context(), in)
	if err != nil {
		h.fail(w, r, "add roasted batch", err)
		return
	}
	h.ok(w, http.StatusCreated, item)
}

func (h *RoastHandler) UpdateRoastedBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "update roasted batch", err)
		return
	}
	var in ports.RoastInput
	if err := h.decode(w, r, roastSchema, &in); err != nil {
		h.fail(w, r, "update roasted batch", err)
		return
	}
	item, err := h.service.UpdateRoastedBatch(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "update roasted batch", err)
		return
	}
	h.ok(w, http.StatusOK, item)
}

func (h *RoastHandler) DeleteRoastedBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "delete roasted batch", err)
		return
	}
	if err := h.service.DeleteRoastedBatch(r.Context(), id); err != nil {
		h.fail(w, r, "delete roasted batch", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
