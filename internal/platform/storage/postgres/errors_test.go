package postgres

import (
	"errors"
	"testing"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"duplicate code", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "green_batches_code_origin_key"}, domain.ErrConflict},
		{"negative stock", &pgconn.PgError{Code: checkViolation, ConstraintName: "roasted_batches_stock_check"}, domain.ErrInsufficientStock},
		{"other check", &pgconn.PgError{Code: checkViolation, ConstraintName: "sales_one_product_check"}, domain.ErrInvalidInput},
		{"missing parent", &pgconn.PgError{Code: foreignKeyViolation, Message: `insert or update on table "sales" violates foreign key constraint`}, domain.ErrNotFound},
		{"still referenced", &pgconn.PgError{Code: foreignKeyViolation, Message: `update or delete on table "origins" violates foreign key constraint`}, domain.ErrDependencyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err, "record"), tt.want)
		})
	}
}

func TestMapError_PassesThroughUnknown(t *testing.T) {
	assert.NoError(t, mapError(nil, "record"))

	boom := errors.New("connection reset")
	err := mapError(boom, "record")
	assert.ErrorIs(t, err, boom)
	assert.False(t, domain.IsDomainError(err))
}

func TestExpectOne(t *testing.T) {
	assert.ErrorIs(t, expectOne(pgconn.NewCommandTag("UPDATE 0"), nil, "sale"), domain.ErrNotFound)
	assert.NoError(t, expectOne(pgconn.NewCommandTag("UPDATE 1"), nil, "sale"))
}

func TestForUpdate(t *testing.T) {
	q := `SELECT id FROM sales WHERE id = $1`
	assert.Equal(t, q, repositories{}.forUpdate(q))
	assert.Equal(t, q+" FOR UPDATE", repositories{lock: true}.forUpdate(q))
}
