package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const defaultTransactionPageSize = 20

// transactionService orchestrates the transaction CRUD surface: every mutation posts through
// the engine, rewrites the ledger and settles balances in one database transaction.
type transactionService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	txnRepo     portsrepo.TransactionRepositoryFacade
	paymentRepo portsrepo.PaymentApplicationRepositoryFacade
	posting     portssvc.PostingEngine
	ledger      portssvc.LedgerSvcFacade
	payments    portssvc.PaymentSvcFacade
	recalc      portssvc.RecalculationSvc
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(
	txManager portsrepo.TransactionManager,
	txnRepo portsrepo.TransactionRepositoryFacade,
	paymentRepo portsrepo.PaymentApplicationRepositoryFacade,
	posting portssvc.PostingEngine,
	ledger portssvc.LedgerSvcFacade,
	payments portssvc.PaymentSvcFacade,
	recalc portssvc.RecalculationSvc,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		txManager:   txManager,
		txnRepo:     txnRepo,
		paymentRepo: paymentRepo,
		posting:     posting,
		ledger:      ledger,
		payments:    payments,
		recalc:      recalc,
	}
}

// buildTransaction maps request fields onto a header and its line items.
func buildTransaction(id string, txnType domain.TransactionType, f dto.TransactionFields) (domain.Transaction, []domain.LineItem) {
	txn := domain.Transaction{
		TransactionID: id,
		Type:          txnType,
		Date:          domain.DateOnly(f.Date),
		Reference:     f.Reference,
		ContactID:     f.ContactID,
		ContactType:   f.ContactType,
		AccountID:     f.AccountID,
		CurrencyCode:  strings.ToUpper(f.CurrencyCode),
		ExchangeRate:  decimal.Zero,
	}
	if f.DueDate != nil {
		due := domain.DateOnly(*f.DueDate)
		txn.DueDate = &due
	}
	if f.ExchangeRate != nil {
		txn.ExchangeRate = *f.ExchangeRate
	}

	lines := make([]domain.LineItem, len(f.LineItems))
	for i, li := range f.LineItems {
		lines[i] = domain.LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			AccountID:   li.AccountID,
			SalesTaxID:  li.SalesTaxID,
			Side:        li.Side,
		}
		if li.Amount != nil {
			supplied := *li.Amount
			lines[i].SuppliedAmount = &supplied
		}
	}
	return txn, lines
}

// initialSettlement returns the status and balance of a freshly posted transaction.
func initialSettlement(txn domain.Transaction, draft bool) (domain.TransactionStatus, decimal.Decimal) {
	switch {
	case draft:
		return domain.StatusDraft, txn.Amount
	case txn.Type.IsReceivableOrPayable():
		return domain.StatusPending, txn.Amount
	case txn.Type.CanApplyToTargets():
		return domain.StatusUnappliedCredit, txn.Amount
	default:
		return domain.StatusPaid, decimal.Zero
	}
}

// CreateTransaction posts a new transaction. The engine runs before anything is written,
// so a posting failure leaves no trace.
func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.TransactionDetail, error) {
	actor := actorOrSystem(userID)
	txn, lines := buildTransaction(uuid.NewString(), req.Type, req.TransactionFields)

	if len(req.Applications) > 0 {
		if !txn.Type.CanApplyToTargets() {
			return nil, apperrors.NewFieldValidationError("applications", fmt.Sprintf("a %s cannot be applied to other transactions", txn.Type))
		}
		if req.Draft {
			return nil, apperrors.NewFieldValidationError("applications", "a draft cannot be applied")
		}
	}

	result, err := s.posting.Post(ctx, txn, lines)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	posted := result.Transaction
	posted.Status, posted.Balance = initialSettlement(posted, req.Draft)
	posted.Version = 1
	posted.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actor,
		LastUpdatedAt: now,
		LastUpdatedBy: actor,
	}

	err = withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if err := s.txnRepo.InsertTransactionInTx(ctx, tx, posted, result.LineItems); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		if req.Draft {
			return nil
		}
		if err := s.ledger.WriteEntriesInTx(ctx, tx, result.Entries, actor); err != nil {
			return err
		}
		for _, app := range req.Applications {
			if _, err := s.payments.ApplyInTx(ctx, tx, posted.TransactionID, app.TargetID, app.Amount, actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create transaction", slog.String("type", string(posted.Type)))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction posted",
		slog.String("transaction_id", posted.TransactionID),
		slog.String("type", string(posted.Type)),
		slog.String("amount", posted.Amount.String()),
		slog.String("currency", posted.CurrencyCode),
		slog.Bool("draft", req.Draft))
	return s.GetTransaction(ctx, posted.TransactionID)
}

// lockForWrite locks a transaction and checks the caller's expected version.
func (s *transactionService) lockForWrite(ctx context.Context, tx pgx.Tx, transactionID string, expectedVersion *int) (*domain.Transaction, error) {
	current, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}
	if expectedVersion != nil && *expectedVersion != current.Version {
		s.LogWarn(ctx, "Transaction version mismatch",
			slog.String("transaction_id", transactionID),
			slog.Int("expected", *expectedVersion),
			slog.Int("actual", current.Version))
		return nil, apperrors.NewConcurrencyConflict("transaction", transactionID)
	}
	return current, nil
}

// appliedSoFar returns what has been applied to or from a transaction.
func (s *transactionService) appliedSoFar(ctx context.Context, tx pgx.Tx, txn domain.Transaction) (decimal.Decimal, error) {
	switch {
	case txn.Type.IsReceivableOrPayable():
		return s.paymentRepo.SumAppliedToTargetInTx(ctx, tx, txn.TransactionID)
	case txn.Type.CanApplyToTargets():
		return s.paymentRepo.SumAppliedFromPaymentInTx(ctx, tx, txn.TransactionID)
	}
	return decimal.Zero, nil
}

// checkCounterparts rejects an edit after which the transaction could no longer settle, or
// be settled by, the counterparts of its active applications.
func (s *transactionService) checkCounterparts(ctx context.Context, tx pgx.Tx, updated domain.Transaction) error {
	var (
		apps       []domain.PaymentApplication
		err        error
		isPayment  = updated.Type.CanApplyToTargets()
		counterIDs []string
	)
	if isPayment {
		apps, err = s.paymentRepo.FindActiveApplicationsByPaymentInTx(ctx, tx, updated.TransactionID)
	} else {
		apps, err = s.paymentRepo.FindActiveApplicationsByTargetInTx(ctx, tx, updated.TransactionID)
	}
	if err != nil {
		return fmt.Errorf("failed to list applications of %s: %w", updated.TransactionID, err)
	}
	for _, a := range apps {
		if isPayment {
			counterIDs = append(counterIDs, a.TargetTransactionID)
		} else {
			counterIDs = append(counterIDs, a.PaymentTransactionID)
		}
	}
	counterIDs = uniqueStrings(counterIDs)
	if len(counterIDs) == 0 {
		return nil
	}

	counterparts, err := s.txnRepo.FindTransactionsByIDsForUpdate(ctx, tx, counterIDs)
	if err != nil {
		return err
	}
	for _, id := range counterIDs {
		cp, ok := counterparts[id]
		if !ok {
			return apperrors.NewNotFoundError(fmt.Sprintf("transaction %s", id))
		}
		ok = settles(updated, cp)
		if !isPayment {
			ok = settles(cp, updated)
		}
		if !ok {
			return apperrors.NewFieldValidationError("contactType",
				fmt.Sprintf("%s would no longer settle %s; reverse its applications first", updated.TransactionID, id))
		}
	}
	return nil
}

// UpdateTransaction reverses every entry of the transaction and reposts it from the new
// data inside one database transaction. The type cannot change.
func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.TransactionDetail, error) {
	actor := actorOrSystem(userID)

	err := withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		current, err := s.lockForWrite(ctx, tx, transactionID, req.ExpectedVersion)
		if err != nil {
			return err
		}
		if current.Status == domain.StatusCancelled {
			return apperrors.NewValidationError(fmt.Sprintf("transaction %s is cancelled", transactionID))
		}
		if req.Draft && current.Status != domain.StatusDraft {
			return apperrors.NewFieldValidationError("draft", "a posted transaction cannot return to draft")
		}

		txn, lines := buildTransaction(transactionID, current.Type, req.TransactionFields)
		result, err := s.posting.Post(ctx, txn, lines)
		if err != nil {
			return err
		}
		updated := result.Transaction

		applied, err := s.appliedSoFar(ctx, tx, *current)
		if err != nil {
			return fmt.Errorf("failed to sum applications of %s: %w", transactionID, err)
		}
		if applied.IsPositive() {
			if updated.Amount.Add(domain.Tolerance).LessThan(applied) {
				return apperrors.NewFieldValidationError("amount",
					fmt.Sprintf("new amount %s is below the %s already applied", updated.Amount.StringFixed(2), applied.StringFixed(2)))
			}
			if updated.CurrencyCode != current.CurrencyCode {
				return apperrors.NewFieldValidationError("currencyCode", "currency cannot change while payments are applied")
			}
			if err := s.checkCounterparts(ctx, tx, updated); err != nil {
				return err
			}
		}

		updated.Status, updated.Balance = initialSettlement(updated, req.Draft)
		updated.Version = current.Version + 1
		updated.AuditFields = domain.AuditFields{
			CreatedAt:     current.CreatedAt,
			CreatedBy:     current.CreatedBy,
			LastUpdatedAt: s.Now(),
			LastUpdatedBy: actor,
		}

		if _, err := s.ledger.ReverseInTx(ctx, tx, transactionID, actor); err != nil {
			return err
		}
		if err := s.txnRepo.ReplaceTransactionInTx(ctx, tx, updated, result.LineItems); err != nil {
			return fmt.Errorf("failed to replace transaction %s: %w", transactionID, err)
		}
		if req.Draft {
			return nil
		}
		if err := s.ledger.WriteEntriesInTx(ctx, tx, result.Entries, actor); err != nil {
			return err
		}
		if updated.Type.IsReceivableOrPayable() || updated.Type.CanApplyToTargets() {
			if _, err := s.recalc.RecalculateInTx(ctx, tx, transactionID, actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction reposted", slog.String("transaction_id", transactionID))
	return s.GetTransaction(ctx, transactionID)
}

// CancelTransaction voids a pending invoice or bill. Its ledger entries are reversed and it
// stays on record as cancelled; payments must be reversed before it can be cancelled.
func (s *transactionService) CancelTransaction(ctx context.Context, transactionID string, expectedVersion *int, userID string) (*domain.TransactionDetail, error) {
	actor := actorOrSystem(userID)

	err := withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		current, err := s.lockForWrite(ctx, tx, transactionID, expectedVersion)
		if err != nil {
			return err
		}
		if !current.Type.IsReceivableOrPayable() {
			return apperrors.NewValidationError(fmt.Sprintf("a %s cannot be cancelled", current.Type))
		}
		if current.Status != domain.StatusPending {
			return apperrors.NewValidationError(fmt.Sprintf("transaction %s is %s; only pending documents can be cancelled", transactionID, current.Status))
		}

		paid, err := s.paymentRepo.SumAppliedToTargetInTx(ctx, tx, transactionID)
		if err != nil {
			return fmt.Errorf("failed to sum applications to %s: %w", transactionID, err)
		}
		if paid.IsPositive() {
			return apperrors.NewValidationError(fmt.Sprintf("transaction %s has %s applied; reverse its payments first", transactionID, paid.StringFixed(2)))
		}

		if _, err := s.ledger.ReverseInTx(ctx, tx, transactionID, actor); err != nil {
			return err
		}
		if err := s.txnRepo.MarkCancelledInTx(ctx, tx, transactionID, current.Version+1, actor, s.Now()); err != nil {
			return fmt.Errorf("failed to cancel transaction %s: %w", transactionID, err)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to cancel transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction cancelled", slog.String("transaction_id", transactionID), slog.String("user_id", actor))
	return s.GetTransaction(ctx, transactionID)
}

// DeleteTransaction reverses the transaction's payment applications and ledger entries,
// then removes it.
func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string, expectedVersion *int, userID string) error {
	actor := actorOrSystem(userID)

	err := withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		current, err := s.lockForWrite(ctx, tx, transactionID, expectedVersion)
		if err != nil {
			return err
		}
		if current.Type.CanApplyToTargets() {
			if err := s.payments.ReversePaymentApplicationsInTx(ctx, tx, transactionID, actor); err != nil {
				return err
			}
		}
		if current.Type.IsReceivableOrPayable() {
			if err := s.payments.ReverseTargetApplicationsInTx(ctx, tx, transactionID, actor); err != nil {
				return err
			}
		}
		if _, err := s.ledger.ReverseInTx(ctx, tx, transactionID, actor); err != nil {
			return err
		}
		if err := s.txnRepo.DeleteTransactionInTx(ctx, tx, transactionID); err != nil {
			return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return err
	}

	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", transactionID), slog.String("user_id", actor))
	return nil
}

// GetTransaction retrieves a transaction with its line items and ledger entries.
func (s *transactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.TransactionDetail, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	lines, err := s.txnRepo.FindLineItemsByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items of %s: %w", transactionID, err)
	}
	entries, err := s.ledger.EntriesFor(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger entries of %s: %w", transactionID, err)
	}
	return &domain.TransactionDetail{
		Transaction:     *txn,
		EffectiveStatus: txn.EffectiveStatus(s.Now()),
		LineItems:       lines,
		Entries:         entries,
	}, nil
}

// ListTransactions retrieves a page of transactions.
func (s *transactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	filter := portsrepo.ListTransactionsFilter{Limit: params.Limit}
	if filter.Limit <= 0 {
		filter.Limit = defaultTransactionPageSize
	}
	if params.Type != "" {
		t := domain.TransactionType(params.Type)
		if !t.IsValid() {
			return nil, nil, apperrors.NewFieldValidationError("type", fmt.Sprintf("unknown transaction type '%s'", params.Type))
		}
		filter.Type = &t
	}
	if params.Status != "" {
		st := domain.TransactionStatus(params.Status)
		filter.Status = &st
	}
	if params.NextToken != "" {
		filter.NextToken = &params.NextToken
	}
	return s.txnRepo.ListTransactions(ctx, filter)
}
