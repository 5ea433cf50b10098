package services

import (
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/importer"
	"github.com/SscSPs/bookkeeping_core/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.ExchangeRate = NewExchangeRateService(
		repos.ExchangeRateRepo,
		repos.CurrencyRepo,
		repos.TransactionRepo,
		WithRateCache(cfg.RateCacheTTL, cfg.RateCacheCleanup),
	)
	container.Account = NewAccountService(repos.AccountRepo, repos.CurrencyRepo, repos.SalesTaxRepo)
	container.Posting = NewPostingEngine(cfg.HomeCurrency, repos.AccountRepo, repos.SalesTaxRepo, container.ExchangeRate)
	container.Ledger = NewLedgerService(repos.TxManager, repos.LedgerRepo, repos.AccountRepo)

	// Settlement depends on recalculation; transactions depend on both
	container.Recalc = NewRecalculationService(repos.TxManager, repos.TransactionRepo, repos.PaymentRepo)
	container.Payment = NewPaymentApplicationService(repos.TxManager, repos.TransactionRepo, repos.PaymentRepo, container.Recalc)
	container.Transaction = NewTransactionService(
		repos.TxManager,
		repos.TransactionRepo,
		repos.PaymentRepo,
		container.Posting,
		container.Ledger,
		container.Payment,
		container.Recalc,
	)

	container.RateFetcher = NewECBRateFetcher(cfg.ECBAPIBaseURL, cfg.RateFetchLookbackDays, cfg.HomeCurrency, container.ExchangeRate, nil)
	container.BankImport = NewBankImportService(importer.DefaultRegistry(), container.Transaction)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade      = (*accountService)(nil)
	_ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)
	_ portssvc.PostingEngine         = (*postingEngine)(nil)
	_ portssvc.LedgerSvcFacade       = (*ledgerService)(nil)
	_ portssvc.RecalculationSvc      = (*recalculationService)(nil)
	_ portssvc.PaymentSvcFacade      = (*paymentApplicationService)(nil)
	_ portssvc.TransactionSvcFacade  = (*transactionService)(nil)
	_ portssvc.RateFetcherSvc        = (*ecbRateFetcher)(nil)
	_ portssvc.BankImportSvc         = (*bankImportService)(nil)
)
