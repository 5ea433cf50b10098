package services

import (
	"context"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
)

// PostingResult is the outcome of posting a transaction: the normalised header,
// recomputed line items and the balanced home-currency ledger rows.
type PostingResult struct {
	Transaction domain.Transaction
	LineItems   []domain.LineItem
	Entries     []domain.LedgerEntry
}

// PostingEngine converts a transaction and its line items into balanced ledger entries.
// It never writes.
type PostingEngine interface {
	Post(ctx context.Context, txn domain.Transaction, lines []domain.LineItem) (*PostingResult, error)
}
