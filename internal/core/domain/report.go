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
	"time"

	"github.com/shopspring/decimal"
)

// StockSummary is the current stock per stage.
type StockSummary struct {
	GreenKg   decimal.Decimal `json:"greenKg"`
	RoastedKg decimal.Decimal `json:"roastedKg"`
	BlendedKg decimal.Decimal `json:"blendedKg"`
}

// MonthlySales is the revenue of one calendar month (YYYY-MM).
type MonthlySales struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductSales is the quantity sold under one batch code.
type ProductSales struct {
	BatchCode  string          `json:"batchCode"`
	QuantityKg decimal.Decimal `json:"quantityKg"`
}

// MassBalance accounts for every kilo that entered as green coffee.
// ReceivedKg must equal the sum of the other terms.
type MassBalance struct {
	ReceivedKg  decimal.Decimal `json:"receivedKg"`
	GreenKg     decimal.Decimal `json:"greenKg"`
	ShrinkageKg decimal.Decimal `json:"shrinkageKg"`
	RoastedKg   decimal.Decimal `json:"roastedKg"`
	BlendedKg   decimal.Decimal `json:"blendedKg"`
	SoldKg      decimal.Decimal `json:"soldKg"`
	Discrepancy decimal.Decimal `json:"discrepancyKg"`
	Balanced    bool            `json:"balanced"`
}

// Settle computes the discrepancy between received mass and accounted mass.
func (m *MassBalance) Settle() {
	accounted := SumKg(m.GreenKg, m.ShrinkageKg, m.RoastedKg, m.BlendedKg, m.SoldKg)
	m.Discrepancy = m.ReceivedKg.Sub(accounted)
	m.Balanced = m.Discrepancy.IsZero()
}

// Dashboard bundles the reports the presentation layer shows together.
type Dashboard struct {
	Stock        *StockSummary  `json:"stock"`
	MonthlySales []MonthlySales `json:"monthlySales"`
	TopProducts  []ProductSales `json:"topProducts"`
	GeneratedAt  time.Time      `json:"generatedAt"`
}
