package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyPair identifies a directed conversion, e.g. CAD -> USD.
type CurrencyPair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NewCurrencyPair normalises both codes to upper case.
func NewCurrencyPair(from, to string) CurrencyPair {
	return CurrencyPair{From: strings.ToUpper(strings.TrimSpace(from)), To: strings.ToUpper(strings.TrimSpace(to))}
}

// IsIdentity reports whether both sides are the same currency.
func (p CurrencyPair) IsIdentity() bool {
	return p.From == p.To
}

// Inverse returns the pair in the opposite direction.
func (p CurrencyPair) Inverse() CurrencyPair {
	return CurrencyPair{From: p.To, To: p.From}
}

func (p CurrencyPair) String() string {
	return fmt.Sprintf("%s->%s", p.From, p.To)
}

// ExchangeRate is a date-versioned conversion rate for a currency pair.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	IsManual         bool            `json:"isManual"`
	AuditFields
}

// Pair returns the currency pair of the rate.
func (r ExchangeRate) Pair() CurrencyPair {
	return CurrencyPair{From: r.FromCurrencyCode, To: r.ToCurrencyCode}
}

// Supersedes reports whether r takes precedence over other when both are on or before
// the lookup date: the later effective date wins, and a manual row wins a same-day tie.
// A manual row does not outrank a later automatic one.
func (r ExchangeRate) Supersedes(other ExchangeRate) bool {
	if !r.DateEffective.Equal(other.DateEffective) {
		return r.DateEffective.After(other.DateEffective)
	}
	return r.IsManual && !other.IsManual
}

// EffectiveRate picks the applicable row for pair on date from rates, or false when
// none is on or before date. Stores that order rows in SQL follow the same rule.
func EffectiveRate(rates []ExchangeRate, pair CurrencyPair, date time.Time) (ExchangeRate, bool) {
	var best ExchangeRate
	found := false
	for _, r := range rates {
		if r.Pair() != pair || r.DateEffective.After(date) {
			continue
		}
		if !found || r.Supersedes(best) {
			best, found = r, true
		}
	}
	return best, found
}

// IdentityRate returns the 1:1 rate used when no conversion is needed.
func IdentityRate(currency string, date time.Time) ExchangeRate {
	code := strings.ToUpper(currency)
	return ExchangeRate{
		FromCurrencyCode: code,
		ToCurrencyCode:   code,
		Rate:             decimal.NewFromInt(1),
		DateEffective:    DateOnly(date),
	}
}

// RateScope controls how far a rate update reaches.
type RateScope string

const (
	// ScopeTransactionOnly embeds the rate on a single transaction; no rate row is written.
	ScopeTransactionOnly RateScope = "transaction_only"
	// ScopeAllOnDate upserts the manual rate row for the pair and date.
	ScopeAllOnDate RateScope = "all_on_date"
)

// IsValid reports whether s is a known scope.
func (s RateScope) IsValid() bool {
	return s == ScopeTransactionOnly || s == ScopeAllOnDate
}

// RateUpdate is the outcome of a setRate request.
type RateUpdate struct {
	Pair  CurrencyPair    `json:"pair"`
	Date  time.Time       `json:"date"`
	Rate  decimal.Decimal `json:"rate"`
	Scope RateScope       `json:"scope"`
	// Stored is set when a rate row was written (all_on_date).
	Stored *ExchangeRate `json:"stored,omitempty"`
}
