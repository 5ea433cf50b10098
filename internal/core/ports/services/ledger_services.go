package services

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// LedgerReaderSvc defines read operations over the ledger
type LedgerReaderSvc interface {
	// BalanceOf sums an account's entries on its normal side up to an optional as-of date.
	BalanceOf(ctx context.Context, accountID string, asOf *time.Time) (*domain.AccountBalance, error)

	// TrialBalance totals debits and credits per account up to an optional as-of date.
	TrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalance, error)

	// EntriesFor retrieves the entries posted for a transaction.
	EntriesFor(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error)
}

// LedgerWriterSvc defines ledger writes; they always join the caller's database transaction
type LedgerWriterSvc interface {
	// WriteEntriesInTx appends entries and updates cached account balances.
	WriteEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry, userID string) error

	// ReverseInTx deletes every entry of a transaction and undoes their effect on cached balances.
	ReverseInTx(ctx context.Context, tx pgx.Tx, transactionID string, userID string) ([]domain.LedgerEntry, error)

	// RecalculateAccountBalance rebuilds an account's cached balance from its entries.
	RecalculateAccountBalance(ctx context.Context, accountID string, userID string) (*domain.AccountBalance, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
