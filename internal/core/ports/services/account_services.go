package services

import (
	"context"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/SscSPs/bookkeeping_core/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive; referenced accounts are never deleted.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error

	// SeedChart upserts accounts by code and sales taxes by name.
	SeedChart(ctx context.Context, accounts []domain.Account, taxes []domain.SalesTax, userID string) (*SeedResult, error)
}

// SeedResult counts what a chart seed touched.
type SeedResult struct {
	Accounts   int
	SalesTaxes int
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
