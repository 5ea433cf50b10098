package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type paymentApplicationService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	txnRepo     portsrepo.TransactionRepositoryFacade
	paymentRepo portsrepo.PaymentApplicationRepositoryFacade
	recalc      portssvc.RecalculationSvc
}

// NewPaymentApplicationService creates the payment application engine.
func NewPaymentApplicationService(
	txManager portsrepo.TransactionManager,
	txnRepo portsrepo.TransactionRepositoryFacade,
	paymentRepo portsrepo.PaymentApplicationRepositoryFacade,
	recalc portssvc.RecalculationSvc,
) portssvc.PaymentSvcFacade {
	return &paymentApplicationService{
		txManager:   txManager,
		txnRepo:     txnRepo,
		paymentRepo: paymentRepo,
		recalc:      recalc,
	}
}

// ApplyPayment applies amount of a payment to a target in its own database transaction.
func (s *paymentApplicationService) ApplyPayment(ctx context.Context, paymentID, targetID string, amount decimal.Decimal, userID string) (*domain.PaymentApplication, error) {
	var app *domain.PaymentApplication
	err := withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		var err error
		app, err = s.ApplyInTx(ctx, tx, paymentID, targetID, amount, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// settles reports whether a payment of type/contact can settle the target type.
func settles(payment domain.Transaction, target domain.Transaction) bool {
	switch target.Type {
	case domain.Invoice:
		return payment.Type == domain.CustomerCredit ||
			(payment.Type == domain.Payment && payment.ContactType == domain.Customer)
	case domain.Bill:
		return payment.Type == domain.VendorCredit ||
			(payment.Type == domain.Payment && payment.ContactType == domain.Vendor)
	}
	return false
}

// ApplyInTx locks both transactions, checks the application against what remains on the
// target and what is unapplied on the payment, then stores it and moves both balances.
func (s *paymentApplicationService) ApplyInTx(ctx context.Context, tx pgx.Tx, paymentID, targetID string, amount decimal.Decimal, userID string) (*domain.PaymentApplication, error) {
	amount = domain.RoundMoney(amount)
	if !amount.IsPositive() {
		return nil, apperrors.NewFieldValidationError("amount", "amount applied must be positive")
	}
	if paymentID == targetID {
		return nil, apperrors.NewValidationError("a transaction cannot be applied to itself")
	}

	locked, err := s.txnRepo.FindTransactionsByIDsForUpdate(ctx, tx, []string{paymentID, targetID})
	if err != nil {
		return nil, err
	}
	payment, ok := locked[paymentID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("payment %s", paymentID))
	}
	target, ok := locked[targetID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("transaction %s", targetID))
	}

	if !payment.Type.CanApplyToTargets() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("a %s cannot be applied to other transactions", payment.Type))
	}
	if !target.Type.IsReceivableOrPayable() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("a %s cannot receive payments", target.Type))
	}
	if !settles(payment, target) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("a %s from a %s cannot settle a %s", payment.Type, payment.ContactType, target.Type))
	}
	for _, t := range []domain.Transaction{payment, target} {
		if t.Status == domain.StatusDraft || t.Status == domain.StatusCancelled {
			return nil, apperrors.NewValidationError(fmt.Sprintf("transaction %s is %s", t.TransactionID, t.Status))
		}
	}
	if payment.CurrencyCode != target.CurrencyCode {
		return nil, apperrors.NewFieldValidationError("currencyCode",
			fmt.Sprintf("payment is in %s but %s is in %s", payment.CurrencyCode, targetID, target.CurrencyCode))
	}

	paid, err := s.paymentRepo.SumAppliedToTargetInTx(ctx, tx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum applications to %s: %w", targetID, err)
	}
	remaining := target.Amount.Sub(paid)
	if amount.GreaterThan(remaining.Add(domain.Tolerance)) {
		return nil, &apperrors.OverApplicationError{TargetID: targetID, Requested: amount, Remaining: remaining}
	}

	applied, err := s.paymentRepo.SumAppliedFromPaymentInTx(ctx, tx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum applications from %s: %w", paymentID, err)
	}
	unapplied := payment.Amount.Sub(applied)
	if amount.GreaterThan(unapplied.Add(domain.Tolerance)) {
		return nil, &apperrors.OverApplicationError{TargetID: paymentID, Requested: amount, Remaining: unapplied}
	}

	now := s.Now()
	actor := actorOrSystem(userID)
	app := domain.PaymentApplication{
		ApplicationID:        uuid.NewString(),
		PaymentTransactionID: paymentID,
		TargetTransactionID:  targetID,
		AmountApplied:        amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}
	if err := s.paymentRepo.InsertApplicationInTx(ctx, tx, app); err != nil {
		return nil, fmt.Errorf("failed to store payment application: %w", err)
	}

	targetBalance := decimal.Max(remaining.Sub(amount), decimal.Zero)
	if err := s.txnRepo.UpdateSettlementInTx(ctx, tx, targetID, targetBalance, domain.SettlementStatus(target.Status, targetBalance), actor, now); err != nil {
		return nil, fmt.Errorf("failed to update balance of %s: %w", targetID, err)
	}
	paymentBalance := decimal.Max(unapplied.Sub(amount), decimal.Zero)
	if err := s.txnRepo.UpdateSettlementInTx(ctx, tx, paymentID, paymentBalance, domain.PaymentStatus(payment.Status, paymentBalance), actor, now); err != nil {
		return nil, fmt.Errorf("failed to update balance of %s: %w", paymentID, err)
	}

	s.LogInfo(ctx, "Payment applied",
		slog.String("payment_id", paymentID),
		slog.String("target_id", targetID),
		slog.String("amount", amount.String()),
		slog.String("target_balance", targetBalance.String()))
	return &app, nil
}

// ReversePaymentApplicationsInTx soft-reverses the applications of a payment and
// recalculates every target it had settled.
func (s *paymentApplicationService) ReversePaymentApplicationsInTx(ctx context.Context, tx pgx.Tx, paymentID string, userID string) error {
	apps, err := s.paymentRepo.FindActiveApplicationsByPaymentInTx(ctx, tx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to list applications of %s: %w", paymentID, err)
	}
	counterparts := make([]string, 0, len(apps))
	for _, a := range apps {
		counterparts = append(counterparts, a.TargetTransactionID)
	}
	return s.reverse(ctx, tx, apps, counterparts, userID)
}

// ReverseTargetApplicationsInTx soft-reverses the applications settling a target and
// recalculates every payment that had been applied to it.
func (s *paymentApplicationService) ReverseTargetApplicationsInTx(ctx context.Context, tx pgx.Tx, targetID string, userID string) error {
	apps, err := s.paymentRepo.FindActiveApplicationsByTargetInTx(ctx, tx, targetID)
	if err != nil {
		return fmt.Errorf("failed to list applications to %s: %w", targetID, err)
	}
	counterparts := make([]string, 0, len(apps))
	for _, a := range apps {
		counterparts = append(counterparts, a.PaymentTransactionID)
	}
	return s.reverse(ctx, tx, apps, counterparts, userID)
}

func (s *paymentApplicationService) reverse(ctx context.Context, tx pgx.Tx, apps []domain.PaymentApplication, counterparts []string, userID string) error {
	if len(apps) == 0 {
		return nil
	}
	ids := make([]string, len(apps))
	for i, a := range apps {
		ids[i] = a.ApplicationID
	}
	if err := s.paymentRepo.MarkApplicationsReversedInTx(ctx, tx, ids, actorOrSystem(userID), s.Now()); err != nil {
		return fmt.Errorf("failed to reverse payment applications: %w", err)
	}

	counterparts = uniqueStrings(counterparts)
	sort.Strings(counterparts)
	for _, id := range counterparts {
		if _, err := s.recalc.RecalculateInTx(ctx, tx, id, userID); err != nil {
			return err
		}
	}
	s.LogInfo(ctx, "Payment applications reversed", slog.Int("applications", len(ids)), slog.Any("recalculated", counterparts))
	return nil
}

// PaymentHistory lists the applications settling a target.
func (s *paymentApplicationService) PaymentHistory(ctx context.Context, targetID string, includeReversed bool) ([]domain.PaymentHistoryItem, error) {
	if _, err := s.txnRepo.FindTransactionByID(ctx, targetID); err != nil {
		return nil, err
	}
	items, err := s.paymentRepo.ListPaymentHistory(ctx, targetID, includeReversed)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment history of %s: %w", targetID, err)
	}
	return items, nil
}
