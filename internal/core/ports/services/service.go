package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers and CLI commands.
type ServiceContainer struct {
	Account      AccountSvcFacade
	ExchangeRate ExchangeRateSvcFacade
	Posting      PostingEngine
	Ledger       LedgerSvcFacade
	Payment      PaymentSvcFacade
	Recalc       RecalculationSvc
	Transaction  TransactionSvcFacade
	RateFetcher  RateFetcherSvc
	BankImport   BankImportSvc
}
