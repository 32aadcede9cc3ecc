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
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeComponent is one origin's share of a recipe.
type RecipeComponent struct {
	OriginID   uuid.UUID       `json:"originId"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Recipe is a named composition template used to pre-fill blends.
type Recipe struct {
	ID         uuid.UUID         `json:"id" db:"id"`
	Name       string            `json:"name" db:"name"`
	Components []RecipeComponent `json:"components" db:"components"`
	CreatedAt  time.Time         `json:"createdAt" db:"created_at"`
}

func (r *Recipe) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return fmt.Errorf("%w: recipe name is required", ErrInvalidInput)
	}
	if len(r.Components) == 0 {
		return fmt.Errorf("%w: recipe needs at least one component", ErrInvalidInput)
	}

	seen := make(map[uuid.UUID]bool, len(r.Components))
	percentages := make([]decimal.Decimal, 0, len(r.Components))
	for i, c := range r.Components {
		if c.OriginID == uuid.Nil {
			return fmt.Errorf("%w: component %d has no origin", ErrInvalidInput, i+1)
		}
		if seen[c.OriginID] {
			return fmt.Errorf("%w: origin %s appears twice", ErrInvalidInput, c.OriginID)
		}
		seen[c.OriginID] = true
		if !c.Percentage.IsPositive() {
			return fmt.Errorf("%w: component %d percentage must be greater than zero", ErrInvalidInput, i+1)
		}
		percentages = append(percentages, c.Percentage)
	}
	return checkComposition(percentages)
}

// UsesOrigin reports whether any component draws from originID.
func (r *Recipe) UsesOrigin(originID uuid.UUID) bool {
	for _, c := range r.Components {
		if c.OriginID == originID {
			return true
		}
	}
	return false
}

// checkComposition requires the percentages to sum to exactly 100.
func checkComposition(percentages []decimal.Decimal) error {
	total := SumKg(percentages...)
	if !total.Equal(Hundred) {
		return fmt.Errorf("%w (got %s%%)", ErrInvalidComposition, total.String())
	}
	return nil
}
