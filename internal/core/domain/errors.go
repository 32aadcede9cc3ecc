/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when a resource already exists.
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidInput is returned when the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidComposition is returned when blend or recipe percentages do not sum to exactly 100.
	ErrInvalidComposition = fmt.Errorf("%w: component percentages must sum to 100", ErrInvalidInput)

	// ErrAllocationMismatch is returned when the batches allocated to a blend component
	// do not add up to the component's share of the blend.
	ErrAllocationMismatch = fmt.Errorf("%w: allocated quantity does not match component share", ErrInvalidInput)

	// ErrInvalidQuantity is returned for non-positive quantities or negative shrinkage.
	ErrInvalidQuantity = fmt.Errorf("%w: invalid quantity", ErrInvalidInput)

	// ErrInsufficientStock is returned when a batch cannot cover a requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDependencyExists is returned when deleting a record still referenced downstream.
	ErrDependencyExists = errors.New("dependent records exist")

	// ErrProductNotFound is returned when a sale references an unknown roasted or blended batch.
	ErrProductNotFound = fmt.Errorf("%w: product", ErrNotFound)

	// ErrOperationFailed is returned when storage fails after validation passed.
	// The operation has been rolled back.
	ErrOperationFailed = errors.New("operation failed")
)

// InsufficientStockError identifies the batch that could not cover a request.
type InsufficientStockError struct {
	Stage     Stage
	BatchID   uuid.UUID
	BatchCode string
	Available decimal.Decimal
	Requested decimal.Decimal
}

// Shortfall is the quantity missing to satisfy the request.
func (e *InsufficientStockError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock in %s batch %s: available %s kg, requested %s kg, short by %s kg",
		e.Stage, e.label(), e.Available.StringFixed(2), e.Requested.StringFixed(2), e.Shortfall().StringFixed(2))
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

func (e *InsufficientStockError) label() string {
	if e.BatchCode != "" {
		return e.BatchCode
	}
	return e.BatchID.String()
}

// DependencyError blocks the deletion of a record that is still referenced.
type DependencyError struct {
	Resource  string
	ID        uuid.UUID
	Dependent string
	Count     int
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s %s is still referenced by %d %s", e.Resource, e.ID, e.Count, e.Dependent)
}

func (e *DependencyError) Unwrap() error { return ErrDependencyExists }

// IsDomainError reports whether err belongs to the recoverable error taxonomy
// (or is already an operation failure) and can be surfaced to the caller as is.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrConflict, ErrInvalidInput,
		ErrInsufficientStock, ErrDependencyExists, ErrOperationFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
