package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type recalculationService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	txnRepo     portsrepo.TransactionRepositoryFacade
	paymentRepo portsrepo.PaymentApplicationRepositoryFacade
}

// NewRecalculationService creates the balance recalculation service.
func NewRecalculationService(txManager portsrepo.TransactionManager, txnRepo portsrepo.TransactionRepositoryFacade, paymentRepo portsrepo.PaymentApplicationRepositoryFacade) portssvc.RecalculationSvc {
	return &recalculationService{
		txManager:   txManager,
		txnRepo:     txnRepo,
		paymentRepo: paymentRepo,
	}
}

// Recalculate re-derives a transaction's balance and status from its active applications.
func (s *recalculationService) Recalculate(ctx context.Context, transactionID string, userID string) (*domain.BalanceSummary, error) {
	var summary *domain.BalanceSummary
	err := withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		var err error
		summary, err = s.RecalculateInTx(ctx, tx, transactionID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// RecalculateInTx locks the transaction and rebuilds its cached balance as a projection
// of the applications table. Invoices and bills track what is still owed; payment types
// track what is still unapplied.
func (s *recalculationService) RecalculateInTx(ctx context.Context, tx pgx.Tx, transactionID string, userID string) (*domain.BalanceSummary, error) {
	txn, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}

	var totalPaid decimal.Decimal
	switch {
	case txn.Type.IsReceivableOrPayable():
		totalPaid, err = s.paymentRepo.SumAppliedToTargetInTx(ctx, tx, transactionID)
	case txn.Type.CanApplyToTargets():
		totalPaid, err = s.paymentRepo.SumAppliedFromPaymentInTx(ctx, tx, transactionID)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("transaction type %s carries no balance", txn.Type))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sum applications of %s: %w", transactionID, err)
	}

	if totalPaid.IsNegative() {
		s.LogWarn(ctx, "Inconsistency: negative total applied, clamped to zero",
			slog.String("transaction_id", transactionID),
			slog.String("total_paid", totalPaid.String()))
		totalPaid = decimal.Zero
	}
	remaining := txn.Amount.Sub(totalPaid)
	if txn.Status == domain.StatusCancelled {
		// a cancelled document owes nothing
		remaining = decimal.Zero
	}
	if remaining.IsNegative() {
		s.LogWarn(ctx, "Inconsistency: applications exceed transaction amount, remaining balance clamped to zero",
			slog.String("transaction_id", transactionID),
			slog.String("original_amount", txn.Amount.String()),
			slog.String("total_paid", totalPaid.String()))
		remaining = decimal.Zero
	}

	status := domain.SettlementStatus(txn.Status, remaining)
	if txn.Type.CanApplyToTargets() {
		status = domain.PaymentStatus(txn.Status, remaining)
	}

	if !txn.Balance.Equal(remaining) || txn.Status != status {
		if err := s.txnRepo.UpdateSettlementInTx(ctx, tx, transactionID, remaining, status, actorOrSystem(userID), s.Now()); err != nil {
			return nil, fmt.Errorf("failed to store balance of %s: %w", transactionID, err)
		}
		s.LogDebug(ctx, "Transaction balance recalculated",
			slog.String("transaction_id", transactionID),
			slog.String("balance", remaining.String()),
			slog.String("status", string(status)))
	}

	return &domain.BalanceSummary{
		TransactionID:    transactionID,
		OriginalAmount:   txn.Amount,
		TotalPaid:        totalPaid,
		RemainingBalance: remaining,
		Status:           status,
	}, nil
}

// RecalculateAllOpen recalculates every pending or paid invoice and bill. Each one runs in its
// own database transaction; failures are collected and the rest still run.
func (s *recalculationService) RecalculateAllOpen(ctx context.Context, userID string) ([]domain.BalanceSummary, error) {
	ids, err := s.txnRepo.ListOpenTransactionIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open transactions: %w", err)
	}

	summaries := make([]domain.BalanceSummary, 0, len(ids))
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		summary, err := s.Recalculate(ctx, id, userID)
		if err != nil {
			s.LogError(ctx, err, "Failed to recalculate transaction", slog.String("transaction_id", id))
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		summaries = append(summaries, *summary)
	}
	s.LogInfo(ctx, "Bulk recalculation finished", slog.Int("recalculated", len(summaries)), slog.Int("failed", len(errs)))
	return summaries, errors.Join(errs...)
}
