/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package postgres

import (
	"context"
	"time"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func toDate(t time.Time) domain.Date {
	return domain.NewDate(t.Year(), t.Month(), t.Day())
}

// --- Green batches ---

const greenColumns = `id, origin_id, supplier_or_farm, received_kg, quantity_kg, unit_price, entry_date, batch_code, created_at`

type greenRepo struct{ r repositories }

func scanGreen(row pgx.Row) (*domain.GreenBatch, error) {
	var (
		g     domain.GreenBatch
		entry time.Time
	)
	err := row.Scan(&g.ID, &g.OriginID, &g.SupplierOrFarm, &g.ReceivedKg, &g.QuantityKg,
		&g.UnitPrice, &entry, &g.BatchCode, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	g.EntryDate = toDate(entry)
	return &g, nil
}

func (g greenRepo) List(ctx context.Context) ([]*domain.GreenBatch, error) {
	rows, err := g.r.q.Query(ctx, `SELECT `+greenColumns+` FROM green_batches ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, mapError(err, "list green batches")
	}
	return collect(rows, scanGreen, "list green batches")
}

func (g greenRepo) ListByOrigin(ctx context.Context, originID uuid.UUID) ([]*domain.GreenBatch, error) {
	query := `SELECT ` + greenColumns + ` FROM green_batches WHERE origin_id = $1 ORDER BY created_at DESC, id`
	rows, err := g.r.q.Query(ctx, query, originID)
	if err != nil {
		return nil, mapError(err, "list green batches")
	}
	return collect(rows, scanGreen, "list green batches")
}

func (g greenRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GreenBatch, error) {
	row := g.r.q.QueryRow(ctx, g.r.forUpdate(`SELECT `+greenColumns+` FROM green_batches WHERE id = $1`), id)
	batch, err := scanGreen(row)
	if err != nil {
		return nil, mapError(err, "green batch "+id.String())
	}
	return batch, nil
}

func (g greenRepo) FindByCode(ctx context.Context, batchCode string, originID uuid.UUID) (*domain.GreenBatch, error) {
	query := `SELECT ` + greenColumns + ` FROM green_batches WHERE batch_code = $1 AND origin_id = $2`
	batch, err := scanGreen(g.r.q.QueryRow(ctx, query, batchCode, originID))
	if err != nil {
		return nil, mapError(err, "green batch "+batchCode)
	}
	return batch, nil
}

func (g greenRepo) Create(ctx context.Context, batch *domain.GreenBatch) error {
	query := `
		INSERT INTO green_batches (id, origin_id, supplier_or_farm, received_kg, quantity_kg, unit_price, entry_date, batch_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := g.r.q.Exec(ctx, query,
		batch.ID, batch.OriginID, batch.SupplierOrFarm, batch.ReceivedKg, batch.QuantityKg,
		batch.UnitPrice, batch.EntryDate.Time, batch.BatchCode, batch.CreatedAt)
	return mapError(err, "green batch "+batch.BatchCode)
}

func (g greenRepo) Update(ctx context.Context, batch *domain.GreenBatch) error {
	query := `
		UPDATE green_batches
		SET origin_id = $2, supplier_or_farm = $3, received_kg = $4, quantity_kg = $5,
		    unit_price = $6, entry_date = $7, batch_code = $8
		WHERE id = $1
	`
	tag, err := g.r.q.Exec(ctx, query,
		batch.ID, batch.OriginID, batch.SupplierOrFarm, batch.ReceivedKg, batch.QuantityKg,
		batch.UnitPrice, batch.EntryDate.Time, batch.BatchCode)
	return expectOne(tag, err, "green batch "+batch.ID.String())
}

func (g greenRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := g.r.q.Exec(ctx, `DELETE FROM green_batches WHERE id = $1`, id)
	return expectOne(tag, err, "green batch "+id.String())
}

// AdjustStock relies on green_batches_stock_check to refuse negative stock.
func (g greenRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	tag, err := g.r.q.Exec(ctx, `UPDATE green_batches SET quantity_kg = quantity_kg + $2 WHERE id = $1`, id, delta)
	return expectOne(tag, err, "green batch "+id.String())
}

// --- Roasted batches ---

const roastedColumns = `id, green_batch_id, quantity_green_kg, resultant_kg, shrinkage_kg, stock_kg, roast_type, roast_date, batch_code, created_at`

type roastedRepo struct{ r repositories }

func scanRoasted(row pgx.Row) (*domain.RoastedBatch, error) {
	var (
		b       domain.RoastedBatch
		roasted time.Time
	)
	err := row.Scan(&b.ID, &b.GreenBatchID, &b.QuantityGreenKg, &b.ResultantKg, &b.ShrinkageKg,
		&b.StockKg, &b.RoastType, &roasted, &b.BatchCode, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.RoastDate = toDate(roasted)
	return &b, nil
}

func (ro roastedRepo) List(ctx context.Context) ([]*domain.RoastedBatch, error) {
	rows, err := ro.r.q.Query(ctx, `SELECT `+roastedColumns+` FROM roasted_batches ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, mapError(err, "list roasted batches")
	}
	return collect(rows, scanRoasted, "list roasted batches")
}

func (ro roastedRepo) ListByGreenBatch(ctx context.Context, greenBatchID uuid.UUID) ([]*domain.RoastedBatch, error) {
	query := `SELECT ` + roastedColumns + ` FROM roasted_batches WHERE green_batch_id = $1 ORDER BY created_at DESC, id`
	rows, err := ro.r.q.Query(ctx, query, greenBatchID)
	if err != nil {
		return nil, mapError(err, "list roasted batches")
	}
	return collect(rows, scanRoasted, "list roasted batches")
}

func (ro roastedRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RoastedBatch, error) {
	row := ro.r.q.QueryRow(ctx, ro.r.forUpdate(`SELECT `+roastedColumns+` FROM roasted_batches WHERE id = $1`), id)
	batch, err := scanRoasted(row)
	if err != nil {
		return nil, mapError(err, "roasted batch "+id.String())
	}
	return batch, nil
}

// GetByCode returns the newest roast carrying batchCode.
func (ro roastedRepo) GetByCode(ctx context.Context, batchCode string) (*domain.RoastedBatch, error) {
	query := `SELECT ` + roastedColumns + ` FROM roasted_batches WHERE batch_code = $1 ORDER BY created_at DESC, id LIMIT 1`
	batch, err := scanRoasted(ro.r.q.QueryRow(ctx, query, batchCode))
	if err != nil {
		return nil, mapError(err, "roasted batch "+batchCode)
	}
	return batch, nil
}

func (ro roastedRepo) Create(ctx context.Context, batch *domain.RoastedBatch) error {
	query := `
		INSERT INTO roasted_batches (id, green_batch_id, quantity_green_kg, resultant_kg, shrinkage_kg, stock_kg, roast_type, roast_date, batch_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := ro.r.q.Exec(ctx, query,
		batch.ID, batch.GreenBatchID, batch.QuantityGreenKg, batch.ResultantKg, batch.ShrinkageKg,
		batch.StockKg, string(batch.RoastType), batch.RoastDate.Time, batch.BatchCode, batch.CreatedAt)
	return mapError(err, "roasted batch "+batch.BatchCode)
}

func (ro roastedRepo) Update(ctx context.Context, batch *domain.RoastedBatch) error {
	query := `
		UPDATE roasted_batches
		SET green_batch_id = $2, quantity_green_kg = $3, resultant_kg = $4, shrinkage_kg = $5,
		    stock_kg = $6, roast_type = $7, roast_date = $8, batch_code = $9
		WHERE id = $1
	`
	tag, err := ro.r.q.Exec(ctx, query,
		batch.ID, batch.GreenBatchID, batch.QuantityGreenKg, batch.ResultantKg, batch.ShrinkageKg,
		batch.StockKg, string(batch.RoastType), batch.RoastDate.Time, batch.BatchCode)
	return expectOne(tag, err, "roasted batch "+batch.ID.String())
}

func (ro roastedRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := ro.r.q.Exec(ctx, `DELETE FROM roasted_batches WHERE id = $1`, id)
	return expectOne(tag, err, "roasted batch "+id.String())
}

func (ro roastedRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	tag, err := ro.r.q.Exec(ctx, `UPDATE roasted_batches SET stock_kg = stock_kg + $2 WHERE id = $1`, id, delta)
	return expectOne(tag, err, "roasted batch "+id.String())
}
