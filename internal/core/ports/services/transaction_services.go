package services

import (
	"context"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/SscSPs/bookkeeping_core/internal/dto"
)

// TransactionReaderSvc defines read operations for transactions
type TransactionReaderSvc interface {
	// GetTransaction retrieves a transaction with its line items and ledger entries.
	GetTransaction(ctx context.Context, transactionID string) (*domain.TransactionDetail, error)

	// ListTransactions retrieves a page of transactions and the token for the next page.
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error)
}

// TransactionWriterSvc defines write operations for transactions
type TransactionWriterSvc interface {
	// CreateTransaction posts a new transaction and, for payment types, applies it to targets.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.TransactionDetail, error)

	// UpdateTransaction reverses a transaction's entries and reposts it from the new data.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.TransactionDetail, error)

	// CancelTransaction reverses the ledger entries of an unpaid invoice or bill and marks it cancelled.
	CancelTransaction(ctx context.Context, transactionID string, expectedVersion *int, userID string) (*domain.TransactionDetail, error)

	// DeleteTransaction reverses applications and entries, then removes the transaction.
	DeleteTransaction(ctx context.Context, transactionID string, expectedVersion *int, userID string) error
}

// TransactionSvcFacade combines all transaction service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
