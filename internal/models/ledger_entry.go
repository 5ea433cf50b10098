package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one debit or credit row. A CHECK constraint keeps exactly one side positive.
type LedgerEntry struct {
	EntryID       string          `db:"entry_id"`
	TransactionID string          `db:"transaction_id"`
	AccountID     string          `db:"account_id"`
	EntryDate     time.Time       `db:"entry_date"`
	Description   string          `db:"description"`
	Debit         decimal.Decimal `db:"debit"`
	Credit        decimal.Decimal `db:"credit"`
	CreatedAt     time.Time       `db:"created_at"`
}
