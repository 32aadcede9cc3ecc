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
	"errors"
	"fmt"
	"strings"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// mapError translates driver errors into domain errors for the record named by what.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", what, err)
	}
	switch pgErr.Code {
	case uniqueViolation:
		return fmt.Errorf("%s: %w", what, domain.ErrConflict)
	case foreignKeyViolation:
		if strings.HasPrefix(pgErr.Message, "update or delete") {
			return fmt.Errorf("%s: %w", what, domain.ErrDependencyExists)
		}
		return fmt.Errorf("%s references a missing record: %w", what, domain.ErrNotFound)
	case checkViolation:
		if strings.HasSuffix(pgErr.ConstraintName, "_stock_check") {
			return fmt.Errorf("%s: %w", what, domain.ErrInsufficientStock)
		}
		return fmt.Errorf("%s: %w: %s", what, domain.ErrInvalidInput, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// expectOne turns an update or delete that touched no row into ErrNotFound.
func expectOne(tag pgconn.CommandTag, err error, what string) error {
	if err != nil {
		return mapError(err, what)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}
