package repository

import (
	"errors"
	"fmt"

	"storefront-catalog/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound    = fmt.Errorf("product %w", domain.ErrNotFound)
	ErrCollectionNotFound = fmt.Errorf("collection %w", domain.ErrNotFound)
	ErrCategoryNotFound   = fmt.Errorf("category %w", domain.ErrNotFound)
	ErrMemberNotFound     = fmt.Errorf("collection member %w", domain.ErrNotFound)
	ErrSessionNotFound    = fmt.Errorf("session %w", domain.ErrNotFound)
)

// Postgres SQLSTATE codes the repositories translate.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// translate maps driver constraint errors onto domain errors and wraps
// anything else with the failed operation.
func translate(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("failed to %s: %w (%s)", op, domain.ErrInvalidReference, pgErr.ConstraintName)
		case pgUniqueViolation:
			return fmt.Errorf("failed to %s: %w (%s)", op, domain.ErrDuplicate, pgErr.ConstraintName)
		case pgCheckViolation:
			return domain.NewValidationError(pgErr.ConstraintName, pgErr.Message)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
