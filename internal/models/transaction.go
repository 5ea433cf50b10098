package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a row of the transactions table (the document header).
type Transaction struct {
	TransactionID   string          `db:"transaction_id"`
	TransactionType string          `db:"transaction_type"`
	TransactionDate time.Time       `db:"transaction_date"`
	DueDate         *time.Time      `db:"due_date"`
	Reference       string          `db:"reference"`
	ContactID       *string         `db:"contact_id"`
	ContactType     *string         `db:"contact_type"`
	AccountID       *string         `db:"account_id"`
	CurrencyCode    string          `db:"currency_code"`
	ExchangeRate    decimal.Decimal `db:"exchange_rate"`
	Amount          decimal.Decimal `db:"amount"`
	HomeAmount      decimal.Decimal `db:"home_amount"`
	Status          string          `db:"status"`
	Balance         decimal.Decimal `db:"balance"`
	Version         int             `db:"version"`
	AuditFields
}

// LineItem represents a row of the line_items table.
type LineItem struct {
	LineItemID    string          `db:"line_item_id"`
	TransactionID string          `db:"transaction_id"`
	LineNo        int             `db:"line_no"`
	Description   string          `db:"description"`
	Quantity      decimal.Decimal `db:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price"`
	Amount        decimal.Decimal `db:"amount"`
	AccountID     *string         `db:"account_id"`
	SalesTaxID    *string         `db:"sales_tax_id"`
	TaxAmount     decimal.Decimal `db:"tax_amount"`
	Side          *string         `db:"side"` // journal entries only
}
