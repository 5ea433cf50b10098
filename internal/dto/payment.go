package dto

import (
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyPaymentRequest applies an amount of a payment to a target invoice or bill.
type ApplyPaymentRequest struct {
	TargetID string          `json:"targetID" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// PaymentApplicationResponse is a stored application.
type PaymentApplicationResponse struct {
	ApplicationID        string          `json:"applicationID"`
	PaymentTransactionID string          `json:"paymentTransactionID"`
	TargetTransactionID  string          `json:"targetTransactionID"`
	AmountApplied        decimal.Decimal `json:"amountApplied"`
	ReversedAt           *time.Time      `json:"reversedAt,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	CreatedBy            string          `json:"createdBy"`
}

// PaymentHistoryItemResponse adds source payment metadata to an application.
type PaymentHistoryItemResponse struct {
	PaymentApplicationResponse
	PaymentType      domain.TransactionType `json:"paymentType"`
	PaymentDate      time.Time              `json:"paymentDate"`
	PaymentReference string                 `json:"paymentReference"`
}

// BalanceSummaryResponse is the result of a recalculation.
type BalanceSummaryResponse struct {
	TransactionID    string                   `json:"transactionID"`
	OriginalAmount   decimal.Decimal          `json:"originalAmount"`
	TotalPaid        decimal.Decimal          `json:"totalPaid"`
	RemainingBalance decimal.Decimal          `json:"remainingBalance"`
	Status           domain.TransactionStatus `json:"status"`
}

// ToPaymentApplicationResponse converts a domain.PaymentApplication.
func ToPaymentApplicationResponse(a domain.PaymentApplication) PaymentApplicationResponse {
	return PaymentApplicationResponse{
		ApplicationID:        a.ApplicationID,
		PaymentTransactionID: a.PaymentTransactionID,
		TargetTransactionID:  a.TargetTransactionID,
		AmountApplied:        a.AmountApplied,
		ReversedAt:           a.ReversedAt,
		CreatedAt:            a.CreatedAt,
		CreatedBy:            a.CreatedBy,
	}
}

// ToPaymentHistoryResponse converts payment history items.
func ToPaymentHistoryResponse(items []domain.PaymentHistoryItem) []PaymentHistoryItemResponse {
	out := make([]PaymentHistoryItemResponse, len(items))
	for i, it := range items {
		out[i] = PaymentHistoryItemResponse{
			PaymentApplicationResponse: ToPaymentApplicationResponse(it.PaymentApplication),
			PaymentType:                it.PaymentType,
			PaymentDate:                it.PaymentDate,
			PaymentReference:           it.PaymentReference,
		}
	}
	return out
}

// ToBalanceSummaryResponse converts a domain.BalanceSummary.
func ToBalanceSummaryResponse(s domain.BalanceSummary) BalanceSummaryResponse {
	return BalanceSummaryResponse{
		TransactionID:    s.TransactionID,
		OriginalAmount:   s.OriginalAmount,
		TotalPaid:        s.TotalPaid,
		RemainingBalance: s.RemainingBalance,
		Status:           s.Status,
	}
}
