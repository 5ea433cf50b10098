package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations over ledger entries
type LedgerReader interface {
	// FindEntriesByTransactionID retrieves the entries posted for a transaction.
	FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error)

	// SumAccountEntries totals debits and credits for an account up to an optional as-of date.
	SumAccountEntries(ctx context.Context, accountID string, asOf *time.Time) (debits, credits decimal.Decimal, err error)

	// TrialBalanceRows totals debits and credits per account up to an optional as-of date.
	TrialBalanceRows(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error)
}

// LedgerWriter defines the append/remove operations on ledger entries, always inside a transaction
type LedgerWriter interface {
	// InsertEntriesInTx appends entries in one batch.
	InsertEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error

	// DeleteEntriesByTransactionInTx removes every entry of a transaction and returns what was removed.
	DeleteEntriesByTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) ([]domain.LedgerEntry, error)

	// SumAccountEntriesInTx is SumAccountEntries evaluated inside tx, without an as-of bound.
	SumAccountEntriesInTx(ctx context.Context, tx pgx.Tx, accountID string) (debits, credits decimal.Decimal, err error)
}

// LedgerRepositoryFacade combines all ledger repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
