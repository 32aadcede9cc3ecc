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

// Stage is one of the three inventory stages a batch can live in.
type Stage string

const (
	StageGreen   Stage = "green"
	StageRoasted Stage = "roasted"
	StageBlended Stage = "blended"
)

// RoastType is the roast degree recorded for a roasted batch.
type RoastType string

const (
	RoastLight  RoastType = "light"
	RoastMedium RoastType = "medium"
	RoastDark   RoastType = "dark"
)

func (t RoastType) Valid() bool {
	switch t {
	case RoastLight, RoastMedium, RoastDark:
		return true
	}
	return false
}

// RoastedBatch is the output of one roast. ResultantKg and ShrinkageKg are
// fixed at roast time; StockKg is what blending and sales have not yet taken.
type RoastedBatch struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	GreenBatchID    uuid.UUID       `json:"greenBatchId" db:"green_batch_id"`
	QuantityGreenKg decimal.Decimal `json:"quantityGreenKg" db:"quantity_green_kg"`
	ResultantKg     decimal.Decimal `json:"resultantKg" db:"resultant_kg"`
	ShrinkageKg     decimal.Decimal `json:"shrinkageKg" db:"shrinkage_kg"`
	StockKg         decimal.Decimal `json:"stockKg" db:"stock_kg"`
	RoastType       RoastType       `json:"roastType" db:"roast_type"`
	RoastDate       Date            `json:"roastDate" db:"roast_date"`
	BatchCode       string          `json:"batchCode" db:"batch_code"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}

// Validate checks the roast figures and derives the shrinkage.
func (r *RoastedBatch) Validate() error {
	r.BatchCode = strings.TrimSpace(r.BatchCode)

	switch {
	case r.GreenBatchID == uuid.Nil:
		return fmt.Errorf("%w: green batch is required", ErrInvalidInput)
	case !r.RoastType.Valid():
		return fmt.Errorf("%w: roast type must be light, medium or dark", ErrInvalidInput)
	case r.RoastDate.IsZero():
		return fmt.Errorf("%w: roast date is required", ErrInvalidInput)
	case !r.QuantityGreenKg.IsPositive():
		return fmt.Errorf("%w: green quantity must be greater than zero", ErrInvalidQuantity)
	case !r.ResultantKg.IsPositive():
		return fmt.Errorf("%w: roasted quantity must be greater than zero", ErrInvalidQuantity)
	case r.ResultantKg.GreaterThan(r.QuantityGreenKg):
		return fmt.Errorf("%w: roasted quantity %s kg exceeds green input %s kg",
			ErrInvalidQuantity, r.ResultantKg.StringFixed(2), r.QuantityGreenKg.StringFixed(2))
	}

	r.ShrinkageKg = r.QuantityGreenKg.Sub(r.ResultantKg)
	return nil
}

// ConsumedKg is the roasted mass already taken by blends and sales.
func (r *RoastedBatch) ConsumedKg() decimal.Decimal {
	return r.ResultantKg.Sub(r.StockKg)
}
