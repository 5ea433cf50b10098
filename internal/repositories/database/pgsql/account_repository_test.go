package pgsql

import (
	"testing"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRows yields no rows and reports err once iteration stops.
type failingRows struct {
	err    error
	closed bool
}

func (r *failingRows) Close()                                       { r.closed = true }
func (r *failingRows) Err() error                                   { return r.err }
func (r *failingRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *failingRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *failingRows) Next() bool                                   { return false }
func (r *failingRows) Scan(dest ...any) error                       { return r.err }
func (r *failingRows) Values() ([]any, error)                       { return nil, r.err }
func (r *failingRows) RawValues() [][]byte                          { return nil }
func (r *failingRows) Conn() *pgx.Conn                              { return nil }

func TestCollectAccounts_LockFailureIsAConflict(t *testing.T) {
	for _, code := range []string{pgDeadlockDetected, pgLockNotAvailable} {
		t.Run(code, func(t *testing.T) {
			rows := &failingRows{err: &pgconn.PgError{Code: code}}

			_, err := collectAccounts(rows)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrConflict)
			assert.True(t, rows.closed)
		})
	}
}

func TestCollectAccounts_OtherErrorsAreWrapped(t *testing.T) {
	rows := &failingRows{err: &pgconn.PgError{Code: "XX000"}}

	_, err := collectAccounts(rows)

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "error iterating account rows")
}
