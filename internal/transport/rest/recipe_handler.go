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

type RecipeHandler struct {
	responder
	service ports.RecipeService
}

func NewRecipeHandler(s ports.RecipeService, schemas *Schemas, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{responder: responder{log: log, schemas: schemas}, service: s}
}

func (h *RecipeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/recipes", h.ListRecipes)
	r.Post("/recipes", h.AddRecipe)
	r.Get("/recipes/{id}", h.GetRecipe)
	r.Put("/recipes/{id}", h.UpdateRecipe)
	r.Delete("/recipes/{id}", h.DeleteRecipe)
}

func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListRecipes(r.Context())
	if err != nil {
		h.fail(w, r, "list recipes", err)
		return
	}
	h.ok(w, http.StatusOK, items)
}

func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "get recipe", err)
		return
	}
	item, err := h.service.GetRecipe(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get recipe", err)
		return
	}
	h.ok(w, http.StatusOK, item)
}

func (h *RecipeHandler) AddRecipe(w http.ResponseWriter, r *http.Request) {
	var in ports.RecipeInput
	if err := h.decode(w, r, recipeSchema, &in); err != nil {
		h.fail(w, r, "add recipe", err)
		return
	}
	item, err := h.service.AddRecipe(r.Context(), in)
	if err != nil {
		h.fail(w, r, "add recipe", err)
		return
	}
	h.ok(w, http.StatusCreated, item)
}

func (h *RecipeHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "update recipe", err)
		return
	}
	var in ports.RecipeInput
	if err := h.decode(w, r, recipeSchema, &in); err != nil {
		h.fail(w, r, "update recipe", err)
		return
	}
	item, err := h.service.UpdateRecipe(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, "update recipe", err)
		return
	}
	h.ok(w, http.StatusOK, item)
}

func (h *RecipeHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "delete recipe", err)
		return
	}
	if err := h.service.DeleteRecipe(r.Context(), id); err != nil {
		h.fail(w, r, "delete recipe", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
