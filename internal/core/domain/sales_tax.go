package domain

import "github.com/shopspring/decimal"

// SalesTax is a tax rate posted to a liability (or recoverable) account.
type SalesTax struct {
	SalesTaxID string          `json:"salesTaxID"`
	Name       string          `json:"name"`
	Rate       decimal.Decimal `json:"rate"` // Fraction, e.g. 0.13
	AccountID  string          `json:"accountID"`
	IsActive   bool            `json:"isActive"`
	AuditFields
}

// TaxOn computes the rounded tax for an amount.
func (t SalesTax) TaxOn(amount decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(t.Rate))
}
