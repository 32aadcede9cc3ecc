/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package domain

import "github.com/shopspring/decimal"

// DisplayPlaces is the precision operators see and enter quantities at.
const DisplayPlaces = 2

// Hundred is the required sum of every percentage composition.
var Hundred = decimal.NewFromInt(100)

// ShareOf returns pct percent of total. The result is exact and may carry more
// places than DisplayPlaces.
func ShareOf(total, pct decimal.Decimal) decimal.Decimal {
	return total.Mul(pct).Div(Hundred)
}

// FinerThanDisplay reports whether q has non-zero digits past DisplayPlaces.
func FinerThanDisplay(q decimal.Decimal) bool {
	return !q.Equal(q.Round(DisplayPlaces))
}

// SumKg adds up quantities.
func SumKg(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
