package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ListTransactionsFilter narrows a transaction listing.
type ListTransactionsFilter struct {
	Type      *domain.TransactionType
	Status    *domain.TransactionStatus
	Limit     int
	NextToken *string
}

// TransactionReader defines read operations for transaction headers and line items
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction header.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindLineItemsByTransactionID retrieves the line items of a transaction in line order.
	FindLineItemsByTransactionID(ctx context.Context, transactionID string) ([]domain.LineItem, error)

	// ListTransactions retrieves a page of transactions, newest first, with a token for the next page.
	ListTransactions(ctx context.Context, filter ListTransactionsFilter) ([]domain.Transaction, *string, error)

	// ListOpenTransactionIDs returns invoices and bills that are pending or paid, for bulk recalculation.
	ListOpenTransactionIDs(ctx context.Context) ([]string, error)

	// CountTransactionsUsingRate counts posted transactions in pair.From dated on date.
	CountTransactionsUsingRate(ctx context.Context, pair domain.CurrencyPair, date time.Time) (int, error)
}

// TransactionTxSupport defines locked reads and writes performed inside a database transaction
type TransactionTxSupport interface {
	// FindTransactionByIDForUpdate locks a transaction row without waiting.
	// A held lock surfaces as a ConcurrencyConflictError.
	FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error)

	// FindTransactionsByIDsForUpdate locks several rows in ascending id order without waiting.
	FindTransactionsByIDsForUpdate(ctx context.Context, tx pgx.Tx, transactionIDs []string) (map[string]domain.Transaction, error)

	// InsertTransactionInTx stores a new header and its line items.
	InsertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, lines []domain.LineItem) error

	// ReplaceTransactionInTx overwrites a header (including its version) and replaces its line items.
	ReplaceTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, lines []domain.LineItem) error

	// UpdateSettlementInTx stores a new cached balance and status.
	UpdateSettlementInTx(ctx context.Context, tx pgx.Tx, transactionID string, balance decimal.Decimal, status domain.TransactionStatus, userID string, now time.Time) error

	// MarkCancelledInTx sets a header to cancelled with a zero balance and stores version.
	MarkCancelledInTx(ctx context.Context, tx pgx.Tx, transactionID string, version int, userID string, now time.Time) error

	// DeleteTransactionInTx removes a header; its line items cascade.
	DeleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionTxSupport
}
