package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentApplication links a payment-type transaction to the invoice or bill it settles.
type PaymentApplication struct {
	ApplicationID        string          `db:"application_id"`
	PaymentTransactionID string          `db:"payment_transaction_id"`
	TargetTransactionID  string          `db:"target_transaction_id"`
	AmountApplied        decimal.Decimal `db:"amount_applied"`
	ReversedAt           *time.Time      `db:"reversed_at"`
	AuditFields
}

// PaymentHistoryItem is an application joined with its payment header.
type PaymentHistoryItem struct {
	PaymentApplication
	PaymentType      string    `db:"transaction_type"`
	PaymentDate      time.Time `db:"transaction_date"`
	PaymentReference string    `db:"reference"`
}
