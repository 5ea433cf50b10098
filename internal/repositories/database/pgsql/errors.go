package pgsql

import (
	"errors"
	"fmt"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes the repositories translate.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// mapPgError turns driver errors into application errors. Unknown errors are returned unchanged.
func mapPgError(err error, resource, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s %s", resource, id))
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s %s (%s)", apperrors.ErrDuplicate, resource, id, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		return apperrors.NewFieldValidationError(pgErr.ConstraintName, fmt.Sprintf("%s %s references a row that does not exist", resource, id))
	case pgCheckViolation:
		return apperrors.NewFieldValidationError(pgErr.ConstraintName, fmt.Sprintf("%s %s violates a constraint", resource, id))
	case pgLockNotAvailable, pgSerializationFailure, pgDeadlockDetected:
		return apperrors.NewConcurrencyConflict(resource, id)
	}
	return err
}
