package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}

func (m *MockAccountService) SeedChart(ctx context.Context, accounts []domain.Account, taxes []domain.SalesTax, userID string) (*portssvc.SeedResult, error) {
	args := m.Called(ctx, accounts, taxes, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.SeedResult), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) BalanceOf(ctx context.Context, accountID string, asOf *time.Time) (*domain.AccountBalance, error) {
	args := m.Called(ctx, accountID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}

func (m *MockLedgerService) TrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalance, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}

func (m *MockLedgerService) EntriesFor(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) WriteEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry, userID string) error {
	return m.Called(ctx, tx, entries, userID).Error(0)
}

func (m *MockLedgerService) ReverseInTx(ctx context.Context, tx pgx.Tx, transactionID string, userID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, tx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) RecalculateAccountBalance(ctx context.Context, accountID string, userID string) (*domain.AccountBalance, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.TransactionDetail, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionDetail), args.Error(1)
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, params)
	var next *string
	if v := args.Get(1); v != nil {
		next = v.(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), next, args.Error(2)
}

func (m *MockTransactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.TransactionDetail, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionDetail), args.Error(1)
}

func (m *MockTransactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.TransactionDetail, error) {
	args := m.Called(ctx, transactionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionDetail), args.Error(1)
}

func (m *MockTransactionService) CancelTransaction(ctx context.Context, transactionID string, expectedVersion *int, userID string) (*domain.TransactionDetail, error) {
	args := m.Called(ctx, transactionID, expectedVersion, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionDetail), args.Error(1)
}

func (m *MockTransactionService) DeleteTransaction(ctx context.Context, transactionID string, expectedVersion *int, userID string) error {
	return m.Called(ctx, transactionID, expectedVersion, userID).Error(0)
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) PaymentHistory(ctx context.Context, targetID string, includeReversed bool) ([]domain.PaymentHistoryItem, error) {
	args := m.Called(ctx, targetID, includeReversed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentHistoryItem), args.Error(1)
}

func (m *MockPaymentService) ApplyPayment(ctx context.Context, paymentID, targetID string, amount decimal.Decimal, userID string) (*domain.PaymentApplication, error) {
	args := m.Called(ctx, paymentID, targetID, amount, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentApplication), args.Error(1)
}

func (m *MockPaymentService) ApplyInTx(ctx context.Context, tx pgx.Tx, paymentID, targetID string, amount decimal.Decimal, userID string) (*domain.PaymentApplication, error) {
	args := m.Called(ctx, tx, paymentID, targetID, amount, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentApplication), args.Error(1)
}

func (m *MockPaymentService) ReversePaymentApplicationsInTx(ctx context.Context, tx pgx.Tx, paymentID string, userID string) error {
	return m.Called(ctx, tx, paymentID, userID).Error(0)
}

func (m *MockPaymentService) ReverseTargetApplicationsInTx(ctx context.Context, tx pgx.Tx, targetID string, userID string) error {
	return m.Called(ctx, tx, targetID, userID).Error(0)
}

var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

// --- Mock RecalculationService ---
type MockRecalculationService struct {
	mock.Mock
}

func (m *MockRecalculationService) Recalculate(ctx context.Context, transactionID string, userID string) (*domain.BalanceSummary, error) {
	args := m.Called(ctx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSummary), args.Error(1)
}

func (m *MockRecalculationService) RecalculateInTx(ctx context.Context, tx pgx.Tx, transactionID string, userID string) (*domain.BalanceSummary, error) {
	args := m.Called(ctx, tx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSummary), args.Error(1)
}

func (m *MockRecalculationService) RecalculateAllOpen(ctx context.Context, userID string) ([]domain.BalanceSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BalanceSummary), args.Error(1)
}

var _ portssvc.RecalculationSvc = (*MockRecalculationService)(nil)

// --- Mock ExchangeRateService ---
type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) Resolve(ctx context.Context, pair domain.CurrencyPair, date time.Time) (domain.ExchangeRate, bool, error) {
	args := m.Called(ctx, pair, date)
	return args.Get(0).(domain.ExchangeRate), args.Bool(1), args.Error(2)
}

func (m *MockExchangeRateService) RateUsage(ctx context.Context, pair domain.CurrencyPair, date time.Time) (int, error) {
	args := m.Called(ctx, pair, date)
	return args.Int(0), args.Error(1)
}

func (m *MockExchangeRateService) ListRates(ctx context.Context, from, to *string, effectiveDate *time.Time, page, pageSize int) ([]domain.ExchangeRate, int, error) {
	args := m.Called(ctx, from, to, effectiveDate, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Int(1), args.Error(2)
}

func (m *MockExchangeRateService) SetRate(ctx context.Context, pair domain.CurrencyPair, date time.Time, rate decimal.Decimal, scope domain.RateScope, confirm bool, userID string) (*domain.RateUpdate, error) {
	args := m.Called(ctx, pair, date, rate, scope, confirm, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateUpdate), args.Error(1)
}

func (m *MockExchangeRateService) StoreAutomaticRate(ctx context.Context, pair domain.CurrencyPair, date time.Time, rate decimal.Decimal) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, pair, date, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

var _ portssvc.ExchangeRateSvcFacade = (*MockExchangeRateService)(nil)
