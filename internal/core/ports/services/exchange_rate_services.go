package services

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	// Resolve returns the rate applicable to pair on date. found is false when no rate
	// exists on or before the date; that is not an error.
	Resolve(ctx context.Context, pair domain.CurrencyPair, date time.Time) (rate domain.ExchangeRate, found bool, err error)

	// RateUsage counts posted transactions in pair.From dated on date.
	RateUsage(ctx context.Context, pair domain.CurrencyPair, date time.Time) (int, error)

	// ListRates retrieves stored rates with optional filtering.
	ListRates(ctx context.Context, from, to *string, effectiveDate *time.Time, page, pageSize int) ([]domain.ExchangeRate, int, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rate data
type ExchangeRateWriterSvc interface {
	// SetRate applies a user rate correction with an explicit scope. confirm must be true
	// for all_on_date when the pair is already used by transactions on that date.
	SetRate(ctx context.Context, pair domain.CurrencyPair, date time.Time, rate decimal.Decimal, scope domain.RateScope, confirm bool, userID string) (*domain.RateUpdate, error)

	// StoreAutomaticRate records a fetched (non-manual) rate.
	StoreAutomaticRate(ctx context.Context, pair domain.CurrencyPair, date time.Time, rate decimal.Decimal) (*domain.ExchangeRate, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}

// RateFetcherSvc pulls automatic reference rates from an external source.
type RateFetcherSvc interface {
	// FetchRates stores the reference rate of each currency into the home currency for date.
	FetchRates(ctx context.Context, currencies []string, date time.Time) ([]domain.ExchangeRate, error)
}
