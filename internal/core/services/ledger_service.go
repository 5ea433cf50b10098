package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ledgerService is the ledger store: it appends and reverses entries and keeps the
// cached account balances in step with them inside the same database transaction.
type ledgerService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(txManager portsrepo.TransactionManager, ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		txManager:   txManager,
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
	}
}

// lockAccounts locks the accounts touched by entries in ascending id order and returns their types.
func (s *ledgerService) lockAccounts(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) (map[string]domain.AccountType, error) {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.AccountID)
	}
	ids = uniqueStrings(ids)
	sort.Strings(ids)

	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	types := make(map[string]domain.AccountType, len(accounts))
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s", id))
		}
		types[id] = acc.AccountType
	}
	return types, nil
}

// WriteEntriesInTx appends entries and moves the cached balances of their accounts.
func (s *ledgerService) WriteEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry, userID string) error {
	if len(entries) == 0 {
		return nil
	}
	if err := accounting.ValidateEntriesBalance(entries); err != nil {
		return fmt.Errorf("refusing to write ledger entries: %w", err)
	}
	types, err := s.lockAccounts(ctx, tx, entries)
	if err != nil {
		return err
	}
	if err := s.ledgerRepo.InsertEntriesInTx(ctx, tx, entries); err != nil {
		return fmt.Errorf("failed to insert ledger entries: %w", err)
	}
	changes := domain.BalanceChanges(entries, types)
	if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, actorOrSystem(userID), s.Now()); err != nil {
		return fmt.Errorf("failed to update account balances: %w", err)
	}
	return nil
}

// ReverseInTx removes every entry of a transaction and undoes their balance effect.
func (s *ledgerService) ReverseInTx(ctx context.Context, tx pgx.Tx, transactionID string, userID string) ([]domain.LedgerEntry, error) {
	removed, err := s.ledgerRepo.DeleteEntriesByTransactionInTx(ctx, tx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete ledger entries of %s: %w", transactionID, err)
	}
	if len(removed) == 0 {
		return removed, nil
	}

	types, err := s.lockAccounts(ctx, tx, removed)
	if err != nil {
		return nil, err
	}
	changes := domain.BalanceChanges(removed, types)
	for id, change := range changes {
		changes[id] = change.Neg()
	}
	if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, actorOrSystem(userID), s.Now()); err != nil {
		return nil, fmt.Errorf("failed to restore account balances: %w", err)
	}

	s.LogDebug(ctx, "Ledger entries reversed", slog.String("transaction_id", transactionID), slog.Int("entries", len(removed)))
	return removed, nil
}

// BalanceOf replays an account's entries on its normal side.
func (s *ledgerService) BalanceOf(ctx context.Context, accountID string, asOf *time.Time) (*domain.AccountBalance, error) {
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if asOf != nil {
		d := domain.DateOnly(*asOf)
		asOf = &d
	}
	debits, credits, err := s.ledgerRepo.SumAccountEntries(ctx, accountID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to sum entries for account %s: %w", accountID, err)
	}
	balance := domain.NewAccountBalance(accountID, acc.AccountType, debits, credits, asOf)
	return &balance, nil
}

// TrialBalance totals debits and credits per account.
func (s *ledgerService) TrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalance, error) {
	if asOf != nil {
		d := domain.DateOnly(*asOf)
		asOf = &d
	}
	rows, err := s.ledgerRepo.TrialBalanceRows(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to build trial balance: %w", err)
	}
	tb := &domain.TrialBalance{AsOf: asOf, Rows: rows, TotalDebits: decimal.Zero, TotalCredits: decimal.Zero}
	for _, r := range rows {
		tb.TotalDebits = tb.TotalDebits.Add(r.Debit)
		tb.TotalCredits = tb.TotalCredits.Add(r.Credit)
	}
	return tb, nil
}

// EntriesFor retrieves the entries posted for a transaction.
func (s *ledgerService) EntriesFor(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	return s.ledgerRepo.FindEntriesByTransactionID(ctx, transactionID)
}

// RecalculateAccountBalance overwrites an account's cached balance with the ledger sum.
func (s *ledgerService) RecalculateAccountBalance(ctx context.Context, accountID string, userID string) (*domain.AccountBalance, error) {
	var result domain.AccountBalance
	err := withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{accountID})
		if err != nil {
			return fmt.Errorf("failed to lock account %s: %w", accountID, err)
		}
		acc, ok := accounts[accountID]
		if !ok {
			return apperrors.NewNotFoundError(fmt.Sprintf("account %s", accountID))
		}

		debits, credits, err := s.ledgerRepo.SumAccountEntriesInTx(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("failed to sum entries for account %s: %w", accountID, err)
		}
		result = domain.NewAccountBalance(accountID, acc.AccountType, debits, credits, nil)

		if !acc.Balance.Equal(result.Balance) {
			s.LogWarn(ctx, "Cached account balance drifted from ledger",
				slog.String("account_id", accountID),
				slog.String("cached", acc.Balance.String()),
				slog.String("ledger", result.Balance.String()))
		}
		return s.accountRepo.SetAccountBalanceInTx(ctx, tx, accountID, result.Balance, actorOrSystem(userID), s.Now())
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
