package repositories

import (
	"context"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
)

// SalesTaxRepositoryFacade defines persistence for sales taxes
type SalesTaxRepositoryFacade interface {
	// FindSalesTaxesByIDs retrieves multiple sales taxes keyed by ID.
	FindSalesTaxesByIDs(ctx context.Context, salesTaxIDs []string) (map[string]domain.SalesTax, error)

	// UpsertSalesTaxByName inserts a tax or updates the one sharing its name.
	UpsertSalesTaxByName(ctx context.Context, tax domain.SalesTax) (*domain.SalesTax, error)
}
