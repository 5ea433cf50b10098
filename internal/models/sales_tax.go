package models

import "github.com/shopspring/decimal"

// SalesTax represents a row of the sales_taxes table.
type SalesTax struct {
	SalesTaxID string          `db:"sales_tax_id"`
	Name       string          `db:"name"`
	Rate       decimal.Decimal `db:"rate"`
	AccountID  string          `db:"account_id"`
	IsActive   bool            `db:"is_active"`
	AuditFields
}
