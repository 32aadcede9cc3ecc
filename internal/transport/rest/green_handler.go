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

type GreenBatchHandler struct {
	responder
	service ports.GreenCoffeeService
}

func NewGreenBatchHandler(s ports.GreenCoffeeService, schemas *Schemas, log *zap.Logger) *GreenBatchHandler {
	return &GreenBatchHandler{responder: responder{log: log, schemas: schemas}, service: s}
}

func (h *GreenBatchHandler) RegisterRoutes(r chi.Router) {
	r.Get("/green-batches", h.ListGreenBatches)
	r.Post("/green-batches", h.AddGreenBatch)
	r.Get("/green-batches/{id}", h.GetGreenBatch)
	r.Put("/green-batches/{id}", h.UpdateGreenBatch)
	r.Delete("/green-batches/{id}", h.DeleteGreenBatch)
}

func (h *GreenBatchHandler) ListGreenBatches(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListGreenBatches(r.Context())
	if err != nil {
		h.fail(w, r, "list green batches", err)
		return
	}
	h.ok(w, http.StatusOK, items)
}

func (h *GreenBatchHandler) GetGreenBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "get green batch", err)
		return
	}
	item, err := h.service.GetGreenBatch(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get green batch", err)
		return
	}
	h.ok(w, http.StatusOK, item)
}

func (h *GreenBatchHandler) AddGreenBatch(w http.ResponseWriter, r *http.Request) {
	var in ports.GreenBatchInput
	if err := h.decode(w, r, greenBatchSchema, &in); err != nil {
		h.fail(w, r, "add green batch", err)
		return
	}
	item, err := h.service.AddGreenBatch(r.Context(), in)
	if err != nil {
		h.fail(w, r, "add green batch", err)
		return
	}
	h.ok(w, http.StatusCreated, item)
}

func (h *GreenBatchHandler) UpdateGreenBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "update green batch", err)
		return
	}
	var in ports.GreenBatchInput
	if err := h.decode(w, r, greenBatchSchema, &in); err != nil {
		h.fail(w, r, "update green batch", err)
		return
	}
	item, err := h.service.UpdateGreenBatch(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "update green batch", err)
		return
	}
	h.ok(w, http.StatusOK, item)
}

func (h *GreenBatchHandler) DeleteGreenBatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "delete green batch", err)
		return
	}
	if err := h.service.DeleteGreenBatch(r.Context(), id); err != nil {
		h.fail(w, r, "delete green batch", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
