package dto

import (
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SetExchangeRateRequest corrects or enters a rate with an explicit scope.
type SetExchangeRateRequest struct {
	FromCurrencyCode string           `json:"fromCurrencyCode" binding:"required,len=3,uppercase"`
	ToCurrencyCode   string           `json:"toCurrencyCode" binding:"required,len=3,uppercase"`
	Date             time.Time        `json:"date" binding:"required"`
	Rate             decimal.Decimal  `json:"rate"`
	Scope            domain.RateScope `json:"scope" binding:"required,oneof=transaction_only all_on_date"`
	Confirm          bool             `json:"confirm"` // Required when the rate is already used on that date
}

// ExchangeRateResponse defines the structure for API responses containing exchange rate details.
type ExchangeRateResponse struct {
	ExchangeRateID   string          `json:"exchangeRateID,omitempty"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	IsManual         bool            `json:"isManual"`
}

// ResolveRateResponse is the outcome of a rate lookup; Found is false when no rate applies.
type ResolveRateResponse struct {
	Found bool                  `json:"found"`
	Rate  *ExchangeRateResponse `json:"rate,omitempty"`
}

// SetRateResponse reports what a setRate request did.
type SetRateResponse struct {
	Scope  domain.RateScope      `json:"scope"`
	Rate   decimal.Decimal       `json:"rate"`
	Stored *ExchangeRateResponse `json:"stored,omitempty"`
}

// RateUsageResponse reports how many posted transactions use a pair on a date.
type RateUsageResponse struct {
	FromCurrencyCode string    `json:"fromCurrencyCode"`
	ToCurrencyCode   string    `json:"toCurrencyCode"`
	Date             time.Time `json:"date"`
	Transactions     int       `json:"transactions"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID:   rate.ExchangeRateID,
		FromCurrencyCode: rate.FromCurrencyCode,
		ToCurrencyCode:   rate.ToCurrencyCode,
		Rate:             rate.Rate,
		DateEffective:    rate.DateEffective,
		IsManual:         rate.IsManual,
	}
}

// ToSetRateResponse converts a domain.RateUpdate.
func ToSetRateResponse(u domain.RateUpdate) SetRateResponse {
	resp := SetRateResponse{Scope: u.Scope, Rate: u.Rate}
	if u.Stored != nil {
		stored := ToExchangeRateResponse(*u.Stored)
		resp.Stored = &stored
	}
	return resp
}

// ListExchangeRatesParams holds query parameters for listing stored rates.
type ListExchangeRatesParams struct {
	From     string `form:"from" binding:"omitempty,len=3"`
	To       string `form:"to" binding:"omitempty,len=3"`
	Date     string `form:"date"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// ListExchangeRatesResponse is a page of stored rates.
type ListExchangeRatesResponse struct {
	Rates    []ExchangeRateResponse `json:"rates"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
}
