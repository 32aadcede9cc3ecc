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

// GreenBatch is a lot of raw coffee. QuantityKg is what is left to roast,
// ReceivedKg what entered the system.
type GreenBatch struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OriginID       uuid.UUID       `json:"originId" db:"origin_id"`
	SupplierOrFarm string          `json:"supplierOrFarm" db:"supplier_or_farm"`
	ReceivedKg     decimal.Decimal `json:"receivedKg" db:"received_kg"`
	QuantityKg     decimal.Decimal `json:"quantityKg" db:"quantity_kg"`
	UnitPrice      decimal.Decimal `json:"unitPrice" db:"unit_price"`
	EntryDate      Date            `json:"entryDate" db:"entry_date"`
	BatchCode      string          `json:"batchCode" db:"batch_code"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
}

func (g *GreenBatch) Validate() error {
	g.BatchCode = strings.TrimSpace(g.BatchCode)
	g.SupplierOrFarm = strings.TrimSpace(g.SupplierOrFarm)

	switch {
	case g.OriginID == uuid.Nil:
		return fmt.Errorf("%w: origin is required", ErrInvalidInput)
	case g.SupplierOrFarm == "":
		return fmt.Errorf("%w: supplier or farm is required", ErrInvalidInput)
	case g.BatchCode == "":
		return fmt.Errorf("%w: batch code is required", ErrInvalidInput)
	case g.EntryDate.IsZero():
		return fmt.Errorf("%w: entry date is required", ErrInvalidInput)
	case !g.ReceivedKg.IsPositive():
		return fmt.Errorf("%w: green quantity must be greater than zero", ErrInvalidQuantity)
	case g.UnitPrice.IsNegative():
		return fmt.Errorf("%w: unit price cannot be negative", ErrInvalidInput)
	}
	return nil
}

// RoastedKg is the green mass already handed to the roaster.
func (g *GreenBatch) RoastedKg() decimal.Decimal {
	return g.ReceivedKg.Sub(g.QuantityKg)
}

