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
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Origin is static reference data: a growing region or farm group that green
// coffee is bought from.
type Origin struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	KilosPerBag      decimal.Decimal `json:"kilosPerBag" db:"kilos_per_bag"`
	SuppliersOrFarms []string        `json:"suppliersOrFarms" db:"suppliers_or_farms"`
	Description      string          `json:"description" db:"description"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
}

// Normalize trims labels and drops duplicate suppliers, keeping first-seen order.
func (o *Origin) Normalize() {
	o.Name = strings.TrimSpace(o.Name)
	o.Description = strings.TrimSpace(o.Description)

	seen := make(map[string]bool, len(o.SuppliersOrFarms))
	suppliers := make([]string, 0, len(o.SuppliersOrFarms))
	for _, s := range o.SuppliersOrFarms {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		suppliers = append(suppliers, s)
	}
	o.SuppliersOrFarms = suppliers
}

func (o *Origin) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("%w: origin name is required", ErrInvalidInput)
	}
	if !o.KilosPerBag.IsPositive() {
		return fmt.Errorf("%w: kilos per bag must be greater than zero", ErrInvalidInput)
	}
	if len(o.SuppliersOrFarms) == 0 {
		return fmt.Errorf("%w: origin needs at least one supplier or farm", ErrInvalidInput)
	}
	return nil
}

// Supplies reports whether label is one of the origin's suppliers or farms.
func (o *Origin) Supplies(label string) bool {
	return slices.Contains(o.SuppliersOrFarms, label)
}

// RemovedSuppliers lists the labels of o that are absent from next.
func (o *Origin) RemovedSuppliers(next *Origin) []string {
	var removed []string
	for _, s := range o.SuppliersOrFarms {
		if !next.Supplies(s) {
			removed = append(removed, s)
		}
	}
	return removed
}
