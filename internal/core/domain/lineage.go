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
	"context"

	"github.com/shopspring/decimal"
)

type ContextKey string

const (
	ViewContextKey        ContextKey = "view_context"
	ViewerIDKey           ContextKey = "viewer_id"
	ViewContextRestricted string     = "restricted"
	ViewContextPublic     string     = "public"
)

// IsRestrictedView reports whether the caller may see supplier names and prices.
func IsRestrictedView(ctx context.Context) bool {
	view, _ := ctx.Value(ViewContextKey).(string)
	return view == ViewContextRestricted
}

// Lineage traces a roasted or blended batch back to its green lots and origins.
type Lineage struct {
	BatchCode  string             `json:"batchCode"`
	Stage      Stage              `json:"stage"`
	Name       string             `json:"name,omitempty"`
	Date       Date               `json:"date"`
	QuantityKg decimal.Decimal    `json:"quantityKg"`
	Components []LineageComponent `json:"components"`
	View       string             `json:"view"`
}

// LineageComponent is one origin's share of the traced batch.
type LineageComponent struct {
	OriginName string          `json:"originName"`
	Percentage decimal.Decimal `json:"percentage"`
	Sources    []LineageSource `json:"sources"`
}

// LineageSource is one roast feeding the traced batch, with its green lot.
// SupplierOrFarm and GreenUnitPrice are only set for restricted views.
type LineageSource struct {
	RoastedBatchCode string           `json:"roastedBatchCode"`
	RoastType        RoastType        `json:"roastType"`
	RoastDate        Date             `json:"roastDate"`
	QuantityUsedKg   decimal.Decimal  `json:"quantityUsedKg"`
	GreenBatchCode   string           `json:"greenBatchCode"`
	EntryDate        Date             `json:"entryDate"`
	SupplierOrFarm   string           `json:"supplierOrFarm,omitempty"`
	GreenUnitPrice   *decimal.Decimal `json:"greenUnitPrice,omitempty"`
}
