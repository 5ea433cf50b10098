package services

import (
	"context"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PaymentReaderSvc defines read operations for payment applications
type PaymentReaderSvc interface {
	// PaymentHistory lists the applications settling a target with their source payment metadata.
	PaymentHistory(ctx context.Context, targetID string, includeReversed bool) ([]domain.PaymentHistoryItem, error)
}

// PaymentWriterSvc defines payment application writes
type PaymentWriterSvc interface {
	// ApplyPayment applies amount of a payment-type transaction to an invoice or bill.
	ApplyPayment(ctx context.Context, paymentID, targetID string, amount decimal.Decimal, userID string) (*domain.PaymentApplication, error)

	// ApplyInTx is ApplyPayment joined to the caller's database transaction.
	ApplyInTx(ctx context.Context, tx pgx.Tx, paymentID, targetID string, amount decimal.Decimal, userID string) (*domain.PaymentApplication, error)

	// ReversePaymentApplicationsInTx reverses every active application made by a payment
	// and restores each target's balance.
	ReversePaymentApplicationsInTx(ctx context.Context, tx pgx.Tx, paymentID string, userID string) error

	// ReverseTargetApplicationsInTx reverses every active application settling a target
	// and restores each payment's unapplied amount.
	ReverseTargetApplicationsInTx(ctx context.Context, tx pgx.Tx, targetID string, userID string) error
}

// PaymentSvcFacade combines all payment application service interfaces
type PaymentSvcFacade interface {
	PaymentReaderSvc
	PaymentWriterSvc
}

// RecalculationSvc rebuilds derived transaction balances from payment applications.
type RecalculationSvc interface {
	// Recalculate re-derives a transaction's balance and status and stores them.
	Recalculate(ctx context.Context, transactionID string, userID string) (*domain.BalanceSummary, error)

	// RecalculateInTx is Recalculate joined to the caller's database transaction.
	RecalculateInTx(ctx context.Context, tx pgx.Tx, transactionID string, userID string) (*domain.BalanceSummary, error)

	// RecalculateAllOpen recalculates every pending or paid invoice and bill.
	RecalculateAllOpen(ctx context.Context, userID string) ([]domain.BalanceSummary, error)
}
