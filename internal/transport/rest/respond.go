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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string         `json:"error"`
	Kind    string         `json:"kind"`
	Details *stockShortage `json:"details,omitempty"`
}

type stockShortage struct {
	Stage       domain.Stage `json:"stage"`
	BatchID     uuid.UUID    `json:"batchId"`
	BatchCode   string       `json:"batchCode,omitempty"`
	AvailableKg string       `json:"availableKg"`
	RequestedKg string       `json:"requestedKg"`
	ShortfallKg string       `json:"shortfallKg"`
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrDependencyExists):
		return http.StatusConflict, "dependency_exists"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	}
	return http.StatusInternalServerError, "internal"
}

// responder holds what every handler needs to read requests and write replies.
type responder struct {
	log     *zap.Logger
	schemas *Schemas
}

func (h responder) ok(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("failed to write response", zap.Error(err))
	}
}

func (h responder) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, kind := statusFor(err)
	resp := errorResponse{Error: err.Error(), Kind: kind}

	var short *domain.InsufficientStockError
	if errors.As(err, &short) {
		resp.Details = &stockShortage{
			Stage:       short.Stage,
			BatchID:     short.BatchID,
			BatchCode:   short.BatchCode,
			AvailableKg: short.Available.StringFixed(domain.DisplayPlaces),
			RequestedKg: short.Requested.StringFixed(domain.DisplayPlaces),
			ShortfallKg: short.Shortfall().StringFixed(domain.DisplayPlaces),
		}
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("op", op), zap.String("path", r.URL.Path), zap.Error(err))
		resp.Error = "internal server error"
	} else {
		h.log.Info("request rejected", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	}
	h.ok(w, status, resp)
}

// decode validates the body against schema and unmarshals it into dst.
func (h responder) decode(w http.ResponseWriter, r *http.Request, schema string, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read request body", domain.ErrInvalidInput)
	}
	defer r.Body.Close()

	if err := h.schemas.Validate(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", domain.ErrInvalidInput, chi.URLParam(r, "id"))
	}
	return id, nil
}
