package pgsql

import (
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds every pgx-backed repository over one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:        &BaseRepository{Pool: dbPool},
		AccountRepo:      newPgxAccountRepository(dbPool),
		CurrencyRepo:     newPgxCurrencyRepository(dbPool),
		ExchangeRateRepo: newPgxExchangeRateRepository(dbPool),
		TransactionRepo:  newPgxTransactionRepository(dbPool),
		LedgerRepo:       newPgxLedgerRepository(dbPool),
		PaymentRepo:      newPgxPaymentApplicationRepository(dbPool),
		SalesTaxRepo:     newPgxSalesTaxRepository(dbPool),
	}
}
