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

type OriginHandler struct {
	responder
	service ports.OriginService
}

func NewOriginHandler(s ports.OriginService, schemas *Schemas, log *zap.Logger) *OriginHandler {
	return &OriginHandler{responder: responder{log: log, schemas: schemas}, service: s}
}

// RegisterRoutes wires up the endpoints to the router
func (h *OriginHandler) RegisterRoutes(r chi.Router) {
	r.Get("/origins", h.ListOrigins)
	r.Post("/origins", h.AddOrigin)
	r.Get("/origins/{id}", h.GetOrigin)
	r.Put("/origins/{id}", h.UpdateOrigin)
	r.Delete("/origins/{id}", h.DeleteOrigin)
}

func (h *OriginHandler) ListOrigins(w http.ResponseWriter, r *http.Request) {
	origins, err := h.service.ListOrigins(r.Context())
	if err != nil {
		h.fail(w, r, "list origins", err)
		return
	}
	h.ok(w, http.StatusOK, origins)
}

func (h *OriginHandler) GetOrigin(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "get origin", err)
		return
	}
	origin, err := h.service.GetOrigin(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get origin", err)
		return
	}
	h.ok(w, http.StatusOK, origin)
}

// AddOrigin handles POST /origins
func (h *OriginHandler) AddOrigin(w http.ResponseWriter, r *http.Request) {
	var in ports.OriginInput
	if err := h.decode(w, r, originSchema, &in); err != nil {
		h.fail(w, r, "add origin", err)
		return
	}
	origin, err := h.service.AddOrigin(r.Context(), in)
	if err != nil {
		h.fail(w, r, "add origin", err)
		return
	}
	h.ok(w, http.StatusCreated, origin)
}

func (h *OriginHandler) UpdateOrigin(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "update origin", err)
		return
	}
	var in ports.OriginInput
	if err := h.decode(w, r, originSchema, &in); err != nil {
		h.fail(w, r, "update origin", err)
		return
	}
	origin, err := h.service.UpdateOrigin(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "update origin", err)
		return
	}
	h.ok(w, http.StatusOK, origin)
}

func (h *OriginHandler) DeleteOrigin(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "delete origin", err)
		return
	}
	if err := h.service.DeleteOrigin(r.Context(), id); err != nil {
		h.fail(w, r, "delete origin", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
