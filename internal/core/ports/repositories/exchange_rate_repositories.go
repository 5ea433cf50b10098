package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindEffectiveRate returns the latest row for the pair with date_effective <= date,
	// preferring a manual row on the same date. It returns ErrNotFound when none exists.
	FindEffectiveRate(ctx context.Context, pair domain.CurrencyPair, date time.Time) (*domain.ExchangeRate, error)

	// ListExchangeRates retrieves rates with optional filtering, newest first per pair.
	ListExchangeRates(ctx context.Context, fromCurrency, toCurrency *string, effectiveDate *time.Time, page, pageSize int) ([]domain.ExchangeRate, int, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// UpsertExchangeRate atomically inserts or updates the row keyed by (pair, date, isManual).
	UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) (*domain.ExchangeRate, error)
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
