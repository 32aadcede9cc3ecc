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
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductType tags which ledger a sold product lives in.
type ProductType string

const (
	ProductRoasted ProductType = "roasted"
	ProductBlended ProductType = "blended"
)

func (t ProductType) Valid() bool {
	return t == ProductRoasted || t == ProductBlended
}

// Stage maps the product type onto its inventory stage.
func (t ProductType) Stage() Stage {
	if t == ProductBlended {
		return StageBlended
	}
	return StageRoasted
}

// ProductRef points at either a roasted or a blended batch.
type ProductRef struct {
	Type ProductType `json:"productType"`
	ID   uuid.UUID   `json:"productId"`
}

func (p ProductRef) Validate() error {
	if !p.Type.Valid() {
		return fmt.Errorf("%w: product type must be roasted or blended", ErrInvalidInput)
	}
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: product is required", ErrInvalidInput)
	}
	return nil
}

func (p ProductRef) String() string {
	return fmt.Sprintf("%s:%s", p.Type, p.ID)
}

// Sale deducts QuantityKg from exactly one product. BatchCodeSold is a copy of
// the product's code at the time of the sale.
type Sale struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Product       ProductRef      `json:"product"`
	QuantityKg    decimal.Decimal `json:"quantityKg" db:"quantity_kg"`
	UnitPrice     decimal.Decimal `json:"unitPrice" db:"unit_price"`
	SaleDate      Date            `json:"saleDate" db:"sale_date"`
	BatchCodeSold string          `json:"batchCodeSold" db:"batch_code_sold"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}

func (s *Sale) Validate() error {
	if err := s.Product.Validate(); err != nil {
		return err
	}
	switch {
	case !s.QuantityKg.IsPositive():
		return fmt.Errorf("%w: sale quantity must be greater than zero", ErrInvalidQuantity)
	case s.UnitPrice.IsNegative():
		return fmt.Errorf("%w: unit price cannot be negative", ErrInvalidInput)
	case s.SaleDate.IsZero():
		return fmt.Errorf("%w: sale date is required", ErrInvalidInput)
	}
	return nil
}

// Revenue is quantity times unit price.
func (s *Sale) Revenue() decimal.Decimal {
	return s.QuantityKg.Mul(s.UnitPrice)
}

// SellableProduct is a roasted or blended batch that still holds stock.
type SellableProduct struct {
	Ref       ProductRef      `json:"ref"`
	Name      string          `json:"name"`
	BatchCode string          `json:"batchCode"`
	StockKg   decimal.Decimal `json:"stockKg"`
}
