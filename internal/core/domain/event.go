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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMovementsChannel is the pub/sub channel committed movements go to.
const StockMovementsChannel = "roastery.stock.movements"

// StockMovement describes one committed change to a batch's stock.
// Delta is negative for consumption and positive for restoration.
type StockMovement struct {
	Operation string          `json:"operation"`
	Stage     Stage           `json:"stage"`
	BatchID   uuid.UUID       `json:"batchId"`
	BatchCode string          `json:"batchCode,omitempty"`
	DeltaKg   decimal.Decimal `json:"deltaKg"`
	At        time.Time       `json:"at"`
}
