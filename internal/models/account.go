package models

import (
	"github.com/shopspring/decimal"
)

// Account represents a row of the accounts table.
// CurrencyCode is NULL for accounts kept in the home currency.
type Account struct {
	AccountID    string          `db:"account_id"`
	Code         string          `db:"code"`
	Name         string          `db:"name"`
	AccountType  string          `db:"account_type"`
	CurrencyCode *string         `db:"currency_code"` // Nullable
	Description  string          `db:"description"`
	IsActive     bool            `db:"is_active"`
	AuditFields                  // Embed common audit fields
	Balance      decimal.Decimal `db:"balance"` // Cached, rebuilt from ledger_entries
}
