package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentApplication links a payment-type transaction to the invoice or bill it settles.
type PaymentApplication struct {
	ApplicationID        string          `json:"applicationID"`
	PaymentTransactionID string          `json:"paymentTransactionID"`
	TargetTransactionID  string          `json:"targetTransactionID"`
	AmountApplied        decimal.Decimal `json:"amountApplied"`
	ReversedAt           *time.Time      `json:"reversedAt,omitempty"`
	AuditFields
}

// IsActive reports whether the application still counts toward balances.
func (a PaymentApplication) IsActive() bool {
	return a.ReversedAt == nil
}

// PaymentHistoryItem is an application together with its source payment metadata.
type PaymentHistoryItem struct {
	PaymentApplication
	PaymentType      TransactionType `json:"paymentType"`
	PaymentDate      time.Time       `json:"paymentDate"`
	PaymentReference string          `json:"paymentReference"`
}

// BalanceSummary is the result of recalculating a target's balance.
type BalanceSummary struct {
	TransactionID    string            `json:"transactionID"`
	OriginalAmount   decimal.Decimal   `json:"originalAmount"`
	TotalPaid        decimal.Decimal   `json:"totalPaid"`
	RemainingBalance decimal.Decimal   `json:"remainingBalance"`
	Status           TransactionStatus `json:"status"`
}

// SettlementStatus derives the stored status of an invoice or bill from its remaining balance.
// Draft and cancelled documents keep their status.
func SettlementStatus(current TransactionStatus, remaining decimal.Decimal) TransactionStatus {
	switch current {
	case StatusDraft, StatusCancelled:
		return current
	}
	if IsSettled(remaining) {
		return StatusPaid
	}
	return StatusPending
}

// PaymentStatus derives the stored status of a payment-type transaction from its unapplied amount.
func PaymentStatus(current TransactionStatus, unapplied decimal.Decimal) TransactionStatus {
	switch current {
	case StatusDraft, StatusCancelled:
		return current
	}
	if IsSettled(unapplied) {
		return StatusPaid
	}
	return StatusUnappliedCredit
}
