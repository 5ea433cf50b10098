package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PaymentApplicationReader defines read operations for payment applications
type PaymentApplicationReader interface {
	// ListPaymentHistory returns applications targeting a transaction with source payment metadata.
	ListPaymentHistory(ctx context.Context, targetTransactionID string, includeReversed bool) ([]domain.PaymentHistoryItem, error)
}

// PaymentApplicationTxSupport defines application reads and writes inside a database transaction
type PaymentApplicationTxSupport interface {
	// InsertApplicationInTx stores a new application.
	InsertApplicationInTx(ctx context.Context, tx pgx.Tx, app domain.PaymentApplication) error

	// FindActiveApplicationsByPaymentInTx lists non-reversed applications made by a payment.
	FindActiveApplicationsByPaymentInTx(ctx context.Context, tx pgx.Tx, paymentTransactionID string) ([]domain.PaymentApplication, error)

	// FindActiveApplicationsByTargetInTx lists non-reversed applications settling a target.
	FindActiveApplicationsByTargetInTx(ctx context.Context, tx pgx.Tx, targetTransactionID string) ([]domain.PaymentApplication, error)

	// MarkApplicationsReversedInTx soft-reverses applications.
	MarkApplicationsReversedInTx(ctx context.Context, tx pgx.Tx, applicationIDs []string, userID string, now time.Time) error

	// SumAppliedToTargetInTx totals non-reversed amounts applied to a target.
	SumAppliedToTargetInTx(ctx context.Context, tx pgx.Tx, targetTransactionID string) (decimal.Decimal, error)

	// SumAppliedFromPaymentInTx totals non-reversed amounts applied from a payment.
	SumAppliedFromPaymentInTx(ctx context.Context, tx pgx.Tx, paymentTransactionID string) (decimal.Decimal, error)
}

// PaymentApplicationRepositoryFacade combines all payment application repository interfaces
type PaymentApplicationRepositoryFacade interface {
	PaymentApplicationReader
	PaymentApplicationTxSupport
}
