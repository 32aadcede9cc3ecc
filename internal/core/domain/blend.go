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

// Allocation records how much of a specific roasted batch feeds a component.
type Allocation struct {
	RoastedBatchID uuid.UUID       `json:"roastedBatchId"`
	QuantityUsedKg decimal.Decimal `json:"quantityUsedKg"`
}

// BlendComponent is one origin's percentage share of a blend, backed by
// explicitly chosen roasted batches.
type BlendComponent struct {
	OriginID    uuid.UUID       `json:"originId"`
	Percentage  decimal.Decimal `json:"percentage"`
	Allocations []Allocation    `json:"selectedAllocations"`
}

// RequiredKg is the component's share of a blend of total kilos.
func (c BlendComponent) RequiredKg(total decimal.Decimal) decimal.Decimal {
	return ShareOf(total, c.Percentage)
}

// AllocatedKg sums the quantities taken from every selected batch.
func (c BlendComponent) AllocatedKg() decimal.Decimal {
	total := decimal.Zero
	for _, a := range c.Allocations {
		total = total.Add(a.QuantityUsedKg)
	}
	return total
}

// BlendedBatch is the output of the blending allocator. StockKg is the part of
// TotalQuantityKg not yet sold.
type BlendedBatch struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	BatchCode       string           `json:"batchCode" db:"batch_code"`
	RecipeID        *uuid.UUID       `json:"recipeId,omitempty" db:"recipe_id"`
	TotalQuantityKg decimal.Decimal  `json:"totalQuantityKg" db:"total_quantity_kg"`
	StockKg         decimal.Decimal  `json:"stockKg" db:"stock_kg"`
	CreationDate    Date             `json:"creationDate" db:"creation_date"`
	Components      []BlendComponent `json:"components"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
}

// ValidateComposition runs the input, percentage and allocation checks in that
// order. Stock sufficiency needs the ledgers and is checked by the allocator.
func (b *BlendedBatch) ValidateComposition() error {
	b.Name = strings.TrimSpace(b.Name)
	b.BatchCode = strings.TrimSpace(b.BatchCode)

	switch {
	case b.Name == "":
		return fmt.Errorf("%w: blend name is required", ErrInvalidInput)
	case !b.TotalQuantityKg.IsPositive():
		return fmt.Errorf("%w: blend quantity must be greater than zero", ErrInvalidQuantity)
	case FinerThanDisplay(b.TotalQuantityKg):
		return fmt.Errorf("%w: blend quantity has more than %d decimals", ErrInvalidQuantity, DisplayPlaces)
	case b.CreationDate.IsZero():
		return fmt.Errorf("%w: creation date is required", ErrInvalidInput)
	case len(b.Components) == 0:
		return fmt.Errorf("%w: blend needs at least one component", ErrInvalidInput)
	}
	for i, c := range b.Components {
		if c.OriginID == uuid.Nil {
			return fmt.Errorf("%w: component %d has no origin", ErrInvalidInput, i+1)
		}
		if !c.Percentage.IsPositive() {
			return fmt.Errorf("%w: component %d percentage must be greater than zero", ErrInvalidInput, i+1)
		}
		for _, a := range c.Allocations {
			if a.RoastedBatchID == uuid.Nil {
				return fmt.Errorf("%w: component %d has an allocation without a roasted batch", ErrInvalidInput, i+1)
			}
			if !a.QuantityUsedKg.IsPositive() {
				return fmt.Errorf("%w: component %d allocation quantity must be greater than zero", ErrInvalidQuantity, i+1)
			}
			if FinerThanDisplay(a.QuantityUsedKg) {
				return fmt.Errorf("%w: component %d allocation has more than %d decimals", ErrInvalidQuantity, i+1, DisplayPlaces)
			}
		}
	}

	percentages := make([]decimal.Decimal, len(b.Components))
	for i, c := range b.Components {
		percentages[i] = c.Percentage
	}
	if err := checkComposition(percentages); err != nil {
		return err
	}

	// Shares are compared exactly. A share that cannot be weighed at display
	// precision (10.01 kg at 50%) can never be matched and the blend is refused.
	for i, c := range b.Components {
		required := c.RequiredKg(b.TotalQuantityKg)
		allocated := c.AllocatedKg()
		if !allocated.Equal(required) {
			return fmt.Errorf("%w: component %d needs %s kg, batches provide %s kg",
				ErrAllocationMismatch, i+1, required.String(), allocated.StringFixed(DisplayPlaces))
		}
	}
	return nil
}

// BatchUsage is the total taken from one roasted batch across all components.
type BatchUsage struct {
	RoastedBatchID uuid.UUID
	QuantityKg     decimal.Decimal
}

// UsageByBatch folds every allocation into one entry per roasted batch,
// in the order batches first appear.
func (b *BlendedBatch) UsageByBatch() []BatchUsage {
	index := make(map[uuid.UUID]int)
	var usage []BatchUsage
	for _, c := range b.Components {
		for _, a := range c.Allocations {
			if i, ok := index[a.RoastedBatchID]; ok {
				usage[i].QuantityKg = usage[i].QuantityKg.Add(a.QuantityUsedKg)
				continue
			}
			index[a.RoastedBatchID] = len(usage)
			usage = append(usage, BatchUsage{RoastedBatchID: a.RoastedBatchID, QuantityKg: a.QuantityUsedKg})
		}
	}
	return usage
}

// SoldKg is the blended mass already sold.
func (b *BlendedBatch) SoldKg() decimal.Decimal {
	return b.TotalQuantityKg.Sub(b.StockKg)
}

// BlendPlan pre-fills a blend from a recipe: each component's required
// kilos and the roasted batches of its origin that still hold stock.
type BlendPlan struct {
	RecipeID        uuid.UUID       `json:"recipeId"`
	RecipeName      string          `json:"recipeName"`
	TotalQuantityKg decimal.Decimal `json:"totalQuantityKg"`
	Components      []PlanComponent `json:"components"`
}

type PlanComponent struct {
	OriginID    uuid.UUID       `json:"originId"`
	OriginName  string          `json:"originName"`
	Percentage  decimal.Decimal `json:"percentage"`
	RequiredKg  decimal.Decimal `json:"requiredKg"`
	AvailableKg decimal.Decimal `json:"availableKg"`
	Candidates  []*RoastedBatch `json:"candidates"`
}
