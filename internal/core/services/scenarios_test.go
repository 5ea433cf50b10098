package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/core/services"
	"github.com/SscSPs/bookkeeping_core/internal/dto"
	"github.com/SscSPs/bookkeeping_core/internal/platform/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// LedgerScenarioSuite runs the services end to end over the in-memory store.
type LedgerScenarioSuite struct {
	suite.Suite
	ctx   context.Context
	store *memStore
	svc   *portssvc.ServiceContainer

	ar, ap, bankUSD, bankCAD, revenue, expense, taxPayable string
	hst                                                     string
}

func TestLedgerScenarioSuite(t *testing.T) {
	suite.Run(t, new(LedgerScenarioSuite))
}

func (s *LedgerScenarioSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newMemStore()

	for _, code := range []string{"USD", "CAD", "EUR"} {
		s.Require().NoError(s.store.SaveCurrency(s.ctx, domain.Currency{CurrencyCode: code, Name: code}))
	}

	addAccount := func(code, name string, t domain.AccountType, currency string) string {
		id := uuid.NewString()
		s.Require().NoError(s.store.SaveAccount(s.ctx, domain.Account{
			AccountID: id, Code: code, Name: name, AccountType: t, CurrencyCode: currency, IsActive: true,
		}))
		return id
	}
	s.bankUSD = addAccount("1000", "Operating USD", domain.Bank, "USD")
	s.bankCAD = addAccount("1010", "Operating CAD", domain.Bank, "CAD")
	s.ar = addAccount("1200", "Accounts receivable", domain.AccountsReceivable, "")
	s.ap = addAccount("2000", "Accounts payable", domain.AccountsPayable, "")
	s.taxPayable = addAccount("2200", "HST payable", domain.Liability, "")
	s.revenue = addAccount("4000", "Sales", domain.Income, "")
	s.expense = addAccount("5000", "Office expenses", domain.Expense, "")

	s.hst = uuid.NewString()
	_, err := s.store.UpsertSalesTaxByName(s.ctx, domain.SalesTax{SalesTaxID: s.hst, Name: "HST", Rate: d("0.13"), AccountID: s.taxPayable, IsActive: true})
	s.Require().NoError(err)

	cfg := &config.Config{
		HomeCurrency:          "USD",
		RateCacheTTL:          time.Minute,
		RateCacheCleanup:      2 * time.Minute,
		ECBAPIBaseURL:         "http://127.0.0.1:0",
		RateFetchLookbackDays: 3,
	}
	s.svc = services.NewServiceContainer(cfg, s.store.provider())
}

func (s *LedgerScenarioSuite) line(qty, price, accountID string) dto.LineItemRequest {
	return dto.LineItemRequest{Quantity: d(qty), UnitPrice: d(price), AccountID: accountID}
}

func (s *LedgerScenarioSuite) createInvoice(amount string, date time.Time) *domain.TransactionDetail {
	due := date.AddDate(0, 1, 0)
	inv, err := s.svc.Transaction.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		Type: domain.Invoice,
		TransactionFields: dto.TransactionFields{
			Date:         date,
			DueDate:      &due,
			Reference:    "INV-1",
			ContactType:  domain.Customer,
			CurrencyCode: "USD",
			LineItems:    []dto.LineItemRequest{s.line("1", amount, s.revenue)},
		},
	}, "user-1")
	s.Require().NoError(err)
	return inv
}

func (s *LedgerScenarioSuite) createCustomerPayment(amount string, apps ...dto.ApplicationRequest) (*domain.TransactionDetail, error) {
	return s.svc.Transaction.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		Type: domain.Payment,
		TransactionFields: dto.TransactionFields{
			Date:         day("2025-01-20"),
			Reference:    "PMT",
			ContactType:  domain.Customer,
			AccountID:    s.bankUSD,
			CurrencyCode: "USD",
			LineItems:    []dto.LineItemRequest{s.line("1", amount, "")},
		},
		Applications: apps,
	}, "user-1")
}

func (s *LedgerScenarioSuite) assertBalanced(entries []domain.LedgerEntry) {
	s.Require().NotEmpty(entries)
	debits, credits := domain.SumEntries(entries)
	s.True(debits.Equal(credits), "debits %s != credits %s", debits, credits)
}

func (s *LedgerScenarioSuite) entryFor(entries []domain.LedgerEntry, accountID string) domain.LedgerEntry {
	for _, e := range entries {
		if e.AccountID == accountID {
			return e
		}
	}
	s.FailNow("no entry for account " + accountID)
	return domain.LedgerEntry{}
}

func (s *LedgerScenarioSuite) transaction(id string) domain.Transaction {
	txn, err := s.store.FindTransactionByID(s.ctx, id)
	s.Require().NoError(err)
	return *txn
}

func (s *LedgerScenarioSuite) TestInvoiceWithPartialPayments() {
	inv := s.createInvoice("1000.00", day("2025-01-05"))
	s.Equal(domain.StatusPending, inv.Status)
	s.True(inv.Balance.Equal(d("1000")))

	_, err := s.createCustomerPayment("400.00", dto.ApplicationRequest{TargetID: inv.TransactionID, Amount: d("400.00")})
	s.Require().NoError(err)
	got := s.transaction(inv.TransactionID)
	s.True(got.Balance.Equal(d("600")), "balance %s", got.Balance)
	s.Equal(domain.StatusPending, got.Status)

	second, err := s.createCustomerPayment("600.00", dto.ApplicationRequest{TargetID: inv.TransactionID, Amount: d("600.00")})
	s.Require().NoError(err)
	got = s.transaction(inv.TransactionID)
	s.True(got.Balance.IsZero(), "balance %s", got.Balance)
	s.Equal(domain.StatusPaid, got.Status)
	s.Equal(domain.StatusPaid, s.transaction(second.TransactionID).Status)

	s.Require().NoError(s.svc.Transaction.DeleteTransaction(s.ctx, second.TransactionID, nil, "user-1"))
	got = s.transaction(inv.TransactionID)
	s.True(got.Balance.Equal(d("600")), "balance %s", got.Balance)
	s.Equal(domain.StatusPending, got.Status)

	history, err := s.svc.Payment.PaymentHistory(s.ctx, inv.TransactionID, false)
	s.Require().NoError(err)
	s.Len(history, 1)
	s.Equal(domain.Payment, history[0].PaymentType)
}

func (s *LedgerScenarioSuite) TestPaymentApplicationBound() {
	inv := s.createInvoice("1000.00", day("2025-01-05"))
	pmt, err := s.createCustomerPayment("2000.00")
	s.Require().NoError(err)
	s.Equal(domain.StatusUnappliedCredit, pmt.Status)

	_, err = s.svc.Payment.ApplyPayment(s.ctx, pmt.TransactionID, inv.TransactionID, d("1000.02"), "user-1")
	var over *apperrors.OverApplicationError
	s.Require().ErrorAs(err, &over)
	s.True(over.Remaining.Equal(d("1000")))
	s.Equal(0, s.store.appCount())

	summary, err := s.svc.Recalc.Recalculate(s.ctx, inv.TransactionID, "user-1")
	s.Require().NoError(err)
	s.True(summary.TotalPaid.IsZero())

	_, err = s.svc.Payment.ApplyPayment(s.ctx, pmt.TransactionID, inv.TransactionID, d("1000.00"), "user-1")
	s.Require().NoError(err)
	s.Equal(domain.StatusPaid, s.transaction(inv.TransactionID).Status)
	p := s.transaction(pmt.TransactionID)
	s.True(p.Balance.Equal(d("1000")))
	s.Equal(domain.StatusUnappliedCredit, p.Status)

	_, err = s.svc.Payment.ApplyPayment(s.ctx, pmt.TransactionID, inv.TransactionID, d("0.50"), "user-1")
	s.Require().ErrorAs(err, &over)
}

func (s *LedgerScenarioSuite) TestFailedApplicationRollsBackPaymentCreation() {
	inv := s.createInvoice("100.00", day("2025-01-05"))
	entriesBefore := len(s.store.allEntries())

	_, err := s.createCustomerPayment("500.00", dto.ApplicationRequest{TargetID: inv.TransactionID, Amount: d("500.00")})
	var over *apperrors.OverApplicationError
	s.Require().ErrorAs(err, &over)

	txns, _, err := s.svc.Transaction.ListTransactions(s.ctx, dto.ListTransactionsParams{Type: string(domain.Payment)})
	s.Require().NoError(err)
	s.Empty(txns)
	s.Len(s.store.allEntries(), entriesBefore)

	bank, err := s.store.FindAccountByID(s.ctx, s.bankUSD)
	s.Require().NoError(err)
	s.True(bank.Balance.IsZero())
}

func (s *LedgerScenarioSuite) TestIdempotentRecalculation() {
	inv := s.createInvoice("250.00", day("2025-01-05"))
	_, err := s.createCustomerPayment("100.00", dto.ApplicationRequest{TargetID: inv.TransactionID, Amount: d("100.00")})
	s.Require().NoError(err)

	first, err := s.svc.Recalc.Recalculate(s.ctx, inv.TransactionID, "user-1")
	s.Require().NoError(err)
	second, err := s.svc.Recalc.Recalculate(s.ctx, inv.TransactionID, "user-1")
	s.Require().NoError(err)
	s.Equal(first, second)
	s.True(first.RemainingBalance.Equal(d("150")))
}

func (s *LedgerScenarioSuite) TestRecalculationRepairsCachedBalance() {
	inv := s.createInvoice("250.00", day("2025-01-05"))
	_, err := s.createCustomerPayment("100.00", dto.ApplicationRequest{TargetID: inv.TransactionID, Amount: d("100.00")})
	s.Require().NoError(err)

	// Corrupt the cache directly.
	tx, _ := s.store.Begin(s.ctx)
	s.Require().NoError(s.store.UpdateSettlementInTx(s.ctx, tx, inv.TransactionID, d("1"), domain.StatusPaid, "x", time.Now()))
	s.Require().NoError(s.store.Commit(s.ctx, tx))

	summaries, err := s.svc.Recalc.RecalculateAllOpen(s.ctx, "")
	s.Require().NoError(err)
	s.Len(summaries, 1)
	got := s.transaction(inv.TransactionID)
	s.True(got.Balance.Equal(d("150")))
	s.Equal(domain.StatusPending, got.Status)
	s.Equal(domain.SystemActor, got.LastUpdatedBy)
}

func (s *LedgerScenarioSuite) TestBalanceInvariantAcrossTypes() {
	_, err := s.svc.ExchangeRate.SetRate(s.ctx, domain.NewCurrencyPair("CAD", "USD"), day("2025-01-01"), d("0.7333"), domain.ScopeAllOnDate, false, "user-1")
	s.Require().NoError(err)

	hst := s.hst
	requests := []dto.CreateTransactionRequest{
		{Type: domain.Invoice, TransactionFields: dto.TransactionFields{
			Date: day("2025-01-05"), CurrencyCode: "USD",
			LineItems: []dto.LineItemRequest{
				{Quantity: d("3"), UnitPrice: d("19.99"), AccountID: s.revenue, SalesTaxID: &hst},
				{Quantity: d("1"), UnitPrice: d("0.07"), AccountID: s.revenue, SalesTaxID: &hst},
			},
		}},
		{Type: domain.Invoice, TransactionFields: dto.TransactionFields{
			Date: day("2025-01-05"), CurrencyCode: "CAD",
			LineItems: []dto.LineItemRequest{
				{Quantity: d("1"), UnitPrice: d("33.33"), AccountID: s.revenue, SalesTaxID: &hst},
				{Quantity: d("1"), UnitPrice: d("33.33"), AccountID: s.revenue},
				{Quantity: d("1"), UnitPrice: d("33.34"), AccountID: s.revenue},
			},
		}},
		{Type: domain.Bill, TransactionFields: dto.TransactionFields{
			Date: day("2025-01-06"), CurrencyCode: "CAD", ContactType: domain.Vendor,
			LineItems: []dto.LineItemRequest{s.line("7", "1.11", s.expense), s.line("1", "0.01", s.expense)},
		}},
		{Type: domain.ExpenseTxn, TransactionFields: dto.TransactionFields{
			Date: day("2025-01-07"), CurrencyCode: "CAD", AccountID: s.bankCAD,
			LineItems: []dto.LineItemRequest{s.line("1", "10.01", s.expense), s.line("1", "10.01", s.expense), s.line("1", "10.01", s.expense)},
		}},
		{Type: domain.JournalEntry, TransactionFields: dto.TransactionFields{
			Date: day("2025-01-08"), CurrencyCode: "CAD",
			LineItems: []dto.LineItemRequest{
				{Quantity: d("1"), UnitPrice: d("0.03"), AccountID: s.expense, Side: domain.Debit},
				{Quantity: d("1"), UnitPrice: d("0.03"), AccountID: s.bankCAD, Side: domain.Credit},
			},
		}},
	}

	for i, req := range requests {
		detail, err := s.svc.Transaction.CreateTransaction(s.ctx, req, "user-1")
		s.Require().NoError(err, "request %d", i)
		s.assertBalanced(detail.Entries)
	}

	tb, err := s.svc.Ledger.TrialBalance(s.ctx, nil)
	s.Require().NoError(err)
	s.True(tb.TotalDebits.Equal(tb.TotalCredits))
}

func (s *LedgerScenarioSuite) TestInvoiceWithTaxPostsTaxAccount() {
	hst := s.hst
	detail, err := s.svc.Transaction.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		Type: domain.Invoice,
		TransactionFields: dto.TransactionFields{
			Date: day("2025-01-05"), CurrencyCode: "USD",
			LineItems: []dto.LineItemRequest{{Quantity: d("2"), UnitPrice: d("50"), AccountID: s.revenue, SalesTaxID: &hst}},
		},
	}, "")
	s.Require().NoError(err)

	s.True(detail.Amount.Equal(d("113")))
	s.True(s.entryFor(detail.Entries, s.ar).Debit.Equal(d("113")))
	s.True(s.entryFor(detail.Entries, s.revenue).Credit.Equal(d("100")))
	s.True(s.entryFor(detail.Entries, s.taxPayable).Credit.Equal(d("13")))
}

func (s *LedgerScenarioSuite) TestReversalCompleteness() {
	s.createInvoice("500.00", day("2025-01-05"))
	touched := []string{s.bankUSD, s.expense, s.ar, s.revenue}

	before := map[string]domain.AccountBalance{}
	for _, id := range touched {
		b, err := s.svc.Ledger.BalanceOf(s.ctx, id, nil)
		s.Require().NoError(err)
		before[id] = *b
	}

	exp, err := s.svc.Transaction.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		Type: domain.ExpenseTxn,
		TransactionFields: dto.TransactionFields{
			Date: day("2025-01-06"), CurrencyCode: "USD", AccountID: s.bankUSD,
			LineItems: []dto.LineItemRequest{s.line("2", "12.50", s.expense)},
		},
	}, "user-1")
	s.Require().NoError(err)
	s.NotEmpty(exp.Entries)

	version := exp.Version
	s.Require().NoError(s.svc.Transaction.DeleteTransaction(s.ctx, exp.TransactionID, &version, "user-1"))

	for _, id := range touched {
		b, err := s.svc.Ledger.BalanceOf(s.ctx, id, nil)
		s.Require().NoError(err)
		s.True(before[id].Balance.Equal(b.Balance), "account %s", id)
		acc, err := s.store.FindAccountByID(s.ctx, id)
		s.Require().NoError(err)
		s.True(acc.Balance.Equal(b.Balance), "cached balance of %s", id)
	}
	_, err = s.svc.Transaction.GetTransaction(s.ctx, exp.TransactionID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerScenarioSuite) TestExchangeRatePrecedence() {
	pair := domain.NewCurrencyPair("CAD", "USD")
	_, err := s.svc.ExchangeRate.SetRate(s.ctx, pair, day("2025-01-10"), d("0.70"), domain.ScopeAllOnDate, false, "user-1")
	s.Require().NoError(err)
	_, err = s.svc.ExchangeRate.StoreAutomaticRate(s.ctx, pair, day("2025-01-12"), d("0.75"))
	s.Require().NoError(err)

	rate, found, err := s.svc.ExchangeRate.Resolve(s.ctx, pair, day("2025-01-11"))
	s.Require().NoError(err)
	s.Require().True(found)
	s.True(rate.Rate.Equal(d("0.70")))
	s.True(rate.IsManual)

	rate, found, err = s.svc.ExchangeRate.Resolve(s.ctx, pair, day("2025-01-12"))
	s.Require().NoError(err)
	s.Require().True(found)
	s.True(rate.Rate.Equal(d("0.75")))

	// the manual row does not outrank a later automatic one
	rate, found, err = s.svc.ExchangeRate.Resolve(s.ctx, pair, day("2025-01-13"))
	s.Require().NoError(err)
	s.Require().True(found)
	s.True(rate.Rate.Equal(d("0.75")))
	s.False(rate.IsManual)

	_, found, err = s.svc.ExchangeRate.Resolve(s.ctx, pair, day("2025-01-09"))
	s.Require().NoError(err)
	s.False(found)

	inverse, found, err := s.svc.ExchangeRate.Resolve(s.ctx, pair.Inverse(), day("2025-01-11"))
	s.Require().NoError(err)
	s.Require().True(found)
	s.True(inverse.Rate.Equal(d("1").DivRound(d("0.70"), domain.RatePlaces)))
}

func (s *LedgerScenarioSuite) TestForeignCurrencyTransfer() {
	_, err := s.svc.ExchangeRate.StoreAutomaticRate(s.ctx, domain.NewCurrencyPair("CAD", "USD"), day("2025-02-03"), d("0.73"))
	s.Require().NoError(err)

	detail, err := s.svc.Transaction.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		Type: domain.Transfer,
		TransactionFields: dto.TransactionFields{
			Date: day("2025-02-03"), CurrencyCode: "CAD", AccountID: s.bankCAD,
			LineItems: []dto.LineItemRequest{s.line("1", "100.00", s.bankUSD)},
		},
	}, "user-1")
	s.Require().NoError(err)

	s.Len(detail.Entries, 2)
	s.True(detail.ExchangeRate.Equal(d("0.73")))
	s.True(detail.HomeAmount.Equal(d("73")))
	s.True(s.entryFor(detail.Entries, s.bankUSD).Debit.Equal(d("73.00")))
	s.True(s.entryFor(detail.Entries, s.bankCAD).Credit.Equal(d("73.00")))
	s.assertBalanced(detail.Entries)
}

func (s *LedgerScenarioSuite) TestRateCorrectionScope() {
	pair := domain.NewCurrencyPair("CAD", "USD")
	date := day("2025-03-04")
	_, err := s.svc.ExchangeRate.StoreAutomaticRate(s.ctx, pair, date, d("1.30"))
	s.Require().NoError(err)

	expense := func() *domain.TransactionDetail {
		detail, err := s.svc.Transaction.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
			Type: domain.ExpenseTxn,
			TransactionFields: dto.TransactionFields{
				Date: date, CurrencyCode: "CAD", AccountID: s.bankCAD,
				LineItems: []dto.LineItemRequest{s.line("1", "100", s.expense)},
			},
		}, "user-1")
		s.Require().NoError(err)
		return detail
	}

	existing := expense()
	s.True(existing.HomeAmount.Equal(d("130")))

	update, err := s.svc.ExchangeRate.SetRate(s.ctx, pair, date, d("1.25"), domain.ScopeTransactionOnly, false, "user-1")
	s.Require().NoError(err)
	s.Nil(update.Stored)

	entries, err := s.svc.Ledger.EntriesFor(s.ctx, existing.TransactionID)
	s.Require().NoError(err)
	s.Equal(existing.Entries, entries)
	s.True(expense().HomeAmount.Equal(d("130")))

	_, err = s.svc.ExchangeRate.SetRate(s.ctx, pair, date, d("1.25"), domain.ScopeAllOnDate, false, "user-1")
	s.Require().ErrorIs(err, apperrors.ErrConfirmationRequired)

	update, err = s.svc.ExchangeRate.SetRate(s.ctx, pair, date, d("1.25"), domain.ScopeAllOnDate, true, "user-1")
	s.Require().NoError(err)
	s.Require().NotNil(update.Stored)
	s.True(update.Stored.IsManual)

	entries, err = s.svc.Ledger.EntriesFor(s.ctx, existing.TransactionID)
	s.Require().NoError(err)
	s.Equal(existing.Entries, entries)
	s.True(expense().HomeAmount.Equal(d("125")))
}

func (s *LedgerScenarioSuite) TestInlineRateOverridesResolver() {
	rate := d("1.40")
	detail, err := s.svc.Transaction.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		Type: domain.ExpenseTxn,
		TransactionFields: dto.TransactionFields{
			Date: day("2025-03-05"), CurrencyCode: "CAD", AccountID: s.bankCAD, ExchangeRate: &rate,
			LineItems: []dto.LineItemRequest{s.line("1", "10", s.expense)},
		},
	}, "user-1")
	s.Require().NoError(err)
	s.True(detail.HomeAmount.Equal(d("14")))
}

func (s *LedgerScenarioSuite) TestMissingRateWritesNothing() {
	_, err := s.svc.Transaction.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		Type: domain.ExpenseTxn,
		TransactionFields: dto.TransactionFields{
			Date: day("2025-03-05"), CurrencyCode: "EUR", AccountID: s.bankUSD,
			LineItems: []dto.LineItemRequest{s.line("1", "10", s.expense)},
		},
	}, "user-1")
	var missing *apperrors.ExchangeRateMissingError
	s.Require().ErrorAs(err, &missing)
	s.Equal("EUR", missing.From)
	s.Equal("USD", missing.To)
	s.Empty(s.store.allEntries())
	s.Zero(s.store.commits)
}

func (s *LedgerScenarioSuite) TestValidationFailures() {
	cases := []struct {
		name string
		req  dto.CreateTransactionRequest
	}{
		{"no lines", dto.CreateTransactionRequest{Type: domain.Invoice, TransactionFields: dto.TransactionFields{Date: day("2025-01-01"), CurrencyCode: "USD"}}},
		{"zero quantity", dto.CreateTransactionRequest{Type: domain.Invoice, TransactionFields: dto.TransactionFields{
			Date: day("2025-01-01"), CurrencyCode: "USD", LineItems: []dto.LineItemRequest{s.line("0", "10", s.revenue)}}}},
		{"unbalanced journal", dto.CreateTransactionRequest{Type: domain.JournalEntry, TransactionFields: dto.TransactionFields{
			Date: day("2025-01-01"), CurrencyCode: "USD", LineItems: []dto.LineItemRequest{
				{Quantity: d("1"), UnitPrice: d("10"), AccountID: s.expense, Side: domain.Debit},
				{Quantity: d("1"), UnitPrice: d("9"), AccountID: s.bankUSD, Side: domain.Credit},
			}}}},
		{"payment without contact", dto.CreateTransactionRequest{Type: domain.Payment, TransactionFields: dto.TransactionFields{
			Date: day("2025-01-01"), CurrencyCode: "USD", AccountID: s.bankUSD, LineItems: []dto.LineItemRequest{s.line("1", "10", "")}}}},
		{"mismatched amount", dto.CreateTransactionRequest{Type: domain.Invoice, TransactionFields: dto.TransactionFields{
			Date: day("2025-01-01"), CurrencyCode: "USD", LineItems: []dto.LineItemRequest{
				func() dto.LineItemRequest {
					li := s.line("2", "10", s.revenue)
					amt := d("25")
					li.Amount = &amt
					return li
				}(),
			}}}},
		{"explicit zero amount", dto.CreateTransactionRequest{Type: domain.Invoice, TransactionFields: dto.TransactionFields{
			Date: day("2025-01-01"), CurrencyCode: "USD", LineItems: []dto.LineItemRequest{
				func() dto.LineItemRequest {
					li := s.line("1", "10", s.revenue)
					zero := decimal.Zero
					li.Amount = &zero
					return li
				}(),
			}}}},
		{"unknown type", dto.CreateTransactionRequest{Type: "refund", TransactionFields: dto.TransactionFields{
			Date: day("2025-01-01"), CurrencyCode: "USD", LineItems: []dto.LineItemRequest{s.line("1", "1", s.revenue)}}}},
		{"application on invoice", dto.CreateTransactionRequest{Type: domain.Invoice, TransactionFields: dto.TransactionFields{
			Date: day("2025-01-01"), CurrencyCode: "USD", LineItems: []dto.LineItemRequest{s.line("1", "1", s.revenue)}},
			Applications: []dto.ApplicationRequest{{TargetID: "x", Amount: d("1")}}}},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.svc.Transaction.CreateTransaction(s.ctx, tc.req, "user-1")
			s.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	s.Empty(s.store.allEntries())
}

func (s *LedgerScenarioSuite) TestUpdateRepostsAndKeepsApplications() {
	inv := s.createInvoice("300.00", day("2025-01-05"))
	_, err := s.createCustomerPayment("100.00", dto.ApplicationRequest{TargetID: inv.TransactionID, Amount: d("100.00")})
	s.Require().NoError(err)

	version := inv.Version
	updated, err := s.svc.Transaction.UpdateTransaction(s.ctx, inv.TransactionID, dto.UpdateTransactionRequest{
		ExpectedVersion: &version,
		TransactionFields: dto.TransactionFields{
			Date: day("2025-01-05"), CurrencyCode: "USD",
			LineItems: []dto.LineItemRequest{s.line("1", "400.00", s.revenue)},
		},
	}, "user-2")
	s.Require().NoError(err)
	s.Equal(version+1, updated.Version)
	s.True(updated.Balance.Equal(d("300")))
	s.Equal(domain.StatusPending, updated.Status)
	s.Equal("user-1", updated.CreatedBy)
	s.Equal("user-2", updated.LastUpdatedBy)
	s.True(s.entryFor(updated.Entries, s.ar).Debit.Equal(d("400")))
	s.Len(updated.Entries, 2)

	_, err = s.svc.Transaction.UpdateTransaction(s.ctx, inv.TransactionID, dto.UpdateTransactionRequest{
		TransactionFields: dto.TransactionFields{
			Date: day("2025-01-05"), CurrencyCode: "USD",
			LineItems: []dto.LineItemRequest{s.line("1", "50.00", s.revenue)},
		},
	}, "user-2")
	s.ErrorIs(err, apperrors.ErrValidation)

	stale := version
	_, err = s.svc.Transaction.UpdateTransaction(s.ctx, inv.TransactionID, dto.UpdateTransactionRequest{
		ExpectedVersion: &stale,
		TransactionFields: dto.TransactionFields{
			Date: day("2025-01-05"), CurrencyCode: "USD",
			LineItems: []dto.LineItemRequest{s.line("1", "500.00", s.revenue)},
		},
	}, "user-2")
	var conflict *apperrors.ConcurrencyConflictError
	s.ErrorAs(err, &conflict)
}

func (s *LedgerScenarioSuite) TestPaymentEditMustStillSettleItsTargets() {
	inv := s.createInvoice("100.00", day("2025-01-05"))
	pmt, err := s.createCustomerPayment("100.00", dto.ApplicationRequest{TargetID: inv.TransactionID, Amount: d("100.00")})
	s.Require().NoError(err)

	_, err = s.svc.Transaction.UpdateTransaction(s.ctx, pmt.TransactionID, dto.UpdateTransactionRequest{
		TransactionFields: dto.TransactionFields{
			Date: day("2025-01-20"), ContactType: domain.Vendor, AccountID: s.bankUSD, CurrencyCode: "USD",
			LineItems: []dto.LineItemRequest{s.line("1", "100.00", "")},
		},
	}, "user-2")
	s.ErrorIs(err, apperrors.ErrValidation)

	stored, err := s.svc.Transaction.GetTransaction(s.ctx, pmt.TransactionID)
	s.Require().NoError(err)
	s.Equal(pmt.Version, stored.Version)
	s.Equal(domain.Customer, stored.ContactType)
	s.True(s.entryFor(stored.Entries, s.ar).Credit.Equal(d("100")))

	receivable, err := s.svc.Ledger.BalanceOf(s.ctx, s.ar, nil)
	s.Require().NoError(err)
	s.True(receivable.Balance.IsZero(), "A/R %s", receivable.Balance)
	s.Equal(domain.StatusPaid, s.transaction(inv.TransactionID).Status)

	// an edit that keeps the contact side is still allowed
	_, err = s.svc.Transaction.UpdateTransaction(s.ctx, pmt.TransactionID, dto.UpdateTransactionRequest{
		TransactionFields: dto.TransactionFields{
			Date: day("2025-01-21"), Reference: "PMT-2", ContactType: domain.Customer, AccountID: s.bankUSD, CurrencyCode: "USD",
			LineItems: []dto.LineItemRequest{s.line("1", "100.00", "")},
		},
	}, "user-2")
	s.Require().NoError(err)
}

func (s *LedgerScenarioSuite) TestSalesReceiptDoesNotSettleInvoices() {
	inv := s.createInvoice("100.00", day("2025-01-05"))
	receipt := dto.CreateTransactionRequest{
		Type: domain.SalesReceipt,
		TransactionFields: dto.TransactionFields{
			Date: day("2025-01-06"), ContactType: domain.Customer, AccountID: s.bankUSD, CurrencyCode: "USD",
			LineItems: []dto.LineItemRequest{s.line("1", "100.00", s.revenue)},
		},
		Applications: []dto.ApplicationRequest{{TargetID: inv.TransactionID, Amount: d("100.00")}},
	}
	_, err := s.svc.Transaction.CreateTransaction(s.ctx, receipt, "user-1")
	s.ErrorIs(err, apperrors.ErrValidation)

	receipt.Applications = nil
	sale, err := s.svc.Transaction.CreateTransaction(s.ctx, receipt, "user-1")
	s.Require().NoError(err)
	s.Equal(domain.StatusPaid, sale.Status)
	s.True(sale.Balance.IsZero())

	_, err = s.svc.Payment.ApplyPayment(s.ctx, sale.TransactionID, inv.TransactionID, d("100.00"), "user-1")
	s.ErrorIs(err, apperrors.ErrValidation)

	got := s.transaction(inv.TransactionID)
	s.Equal(domain.StatusPending, got.Status)
	s.True(got.Balance.Equal(d("100")))
	s.Zero(s.store.appCount())
}

func (s *LedgerScenarioSuite) TestCancelInvoice() {
	inv := s.createInvoice("200.00", day("2025-01-05"))

	version := inv.Version
	cancelled, err := s.svc.Transaction.CancelTransaction(s.ctx, inv.TransactionID, &version, "user-2")
	s.Require().NoError(err)
	s.Equal(domain.StatusCancelled, cancelled.Status)
	s.Equal(domain.StatusCancelled, cancelled.EffectiveStatus)
	s.Equal(version+1, cancelled.Version)
	s.True(cancelled.Balance.IsZero())
	s.Empty(cancelled.Entries)

	receivable, err := s.svc.Ledger.BalanceOf(s.ctx, s.ar, nil)
	s.Require().NoError(err)
	s.True(receivable.Balance.IsZero())

	_, err = s.createCustomerPayment("50.00", dto.ApplicationRequest{TargetID: inv.TransactionID, Amount: d("50.00")})
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Zero(s.store.appCount())

	_, err = s.svc.Transaction.CancelTransaction(s.ctx, inv.TransactionID, nil, "user-2")
	s.ErrorIs(err, apperrors.ErrValidation)

	summary, err := s.svc.Recalc.Recalculate(s.ctx, inv.TransactionID, "user-2")
	s.Require().NoError(err)
	s.Equal(domain.StatusCancelled, summary.Status)
	s.True(summary.RemainingBalance.IsZero())
}

func (s *LedgerScenarioSuite) TestCancelRejectsPaidOrStale() {
	inv := s.createInvoice("200.00", day("2025-01-05"))
	_, err := s.createCustomerPayment("50.00", dto.ApplicationRequest{TargetID: inv.TransactionID, Amount: d("50.00")})
	s.Require().NoError(err)

	_, err = s.svc.Transaction.CancelTransaction(s.ctx, inv.TransactionID, nil, "user-2")
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Equal(domain.StatusPending, s.transaction(inv.TransactionID).Status)

	other := s.createInvoice("10.00", day("2025-01-05"))
	stale := other.Version + 1
	_, err = s.svc.Transaction.CancelTransaction(s.ctx, other.TransactionID, &stale, "user-2")
	var conflict *apperrors.ConcurrencyConflictError
	s.ErrorAs(err, &conflict)

	exp, err := s.svc.Transaction.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		Type: domain.ExpenseTxn,
		TransactionFields: dto.TransactionFields{
			Date: day("2025-01-06"), CurrencyCode: "USD", AccountID: s.bankUSD,
			LineItems: []dto.LineItemRequest{s.line("1", "5.00", s.expense)},
		},
	}, "user-1")
	s.Require().NoError(err)
	_, err = s.svc.Transaction.CancelTransaction(s.ctx, exp.TransactionID, nil, "user-2")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerScenarioSuite) TestLockedTransactionIsAConflict() {
	inv := s.createInvoice("100.00", day("2025-01-05"))
	pmt, err := s.createCustomerPayment("100.00")
	s.Require().NoError(err)

	s.store.locked[inv.TransactionID] = true
	_, err = s.svc.Payment.ApplyPayment(s.ctx, pmt.TransactionID, inv.TransactionID, d("10"), "user-1")
	s.ErrorIs(err, apperrors.ErrConflict)

	err = s.svc.Transaction.DeleteTransaction(s.ctx, inv.TransactionID, nil, "user-1")
	s.ErrorIs(err, apperrors.ErrConflict)
	s.Equal(0, s.store.appCount())
}

func (s *LedgerScenarioSuite) TestDraftPostsOnUpdate() {
	draft, err := s.svc.Transaction.CreateTransaction(s.ctx, dto.CreateTransactionRequest{
		Type: domain.Deposit,
		TransactionFields: dto.TransactionFields{
			Date: day("2025-01-05"), CurrencyCode: "USD", AccountID: s.bankUSD, Draft: true,
			LineItems: []dto.LineItemRequest{s.line("1", "80", s.revenue)},
		},
	}, "user-1")
	s.Require().NoError(err)
	s.Equal(domain.StatusDraft, draft.Status)
	s.Empty(draft.Entries)

	posted, err := s.svc.Transaction.UpdateTransaction(s.ctx, draft.TransactionID, dto.UpdateTransactionRequest{
		TransactionFields: dto.TransactionFields{
			Date: day("2025-01-05"), CurrencyCode: "USD", AccountID: s.bankUSD,
			LineItems: []dto.LineItemRequest{s.line("1", "80", s.revenue)},
		},
	}, "user-1")
	s.Require().NoError(err)
	s.Equal(domain.StatusPaid, posted.Status)
	s.assertBalanced(posted.Entries)

	_, err = s.svc.Transaction.UpdateTransaction(s.ctx, draft.TransactionID, dto.UpdateTransactionRequest{
		TransactionFields: dto.TransactionFields{
			Date: day("2025-01-05"), CurrencyCode: "USD", AccountID: s.bankUSD, Draft: true,
			LineItems: []dto.LineItemRequest{s.line("1", "80", s.revenue)},
		},
	}, "user-1")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerScenarioSuite) TestAccountBalanceRebuild() {
	s.createInvoice("75.00", day("2025-01-05"))

	tx, _ := s.store.Begin(s.ctx)
	s.Require().NoError(s.store.SetAccountBalanceInTx(s.ctx, tx, s.ar, d("999"), "x", time.Now()))
	s.Require().NoError(s.store.Commit(s.ctx, tx))

	balance, err := s.svc.Ledger.RecalculateAccountBalance(s.ctx, s.ar, "user-1")
	s.Require().NoError(err)
	s.True(balance.Balance.Equal(d("75")))
	acc, err := s.store.FindAccountByID(s.ctx, s.ar)
	s.Require().NoError(err)
	s.True(acc.Balance.Equal(d("75")))

	asOf := day("2025-01-04")
	early, err := s.svc.Ledger.BalanceOf(s.ctx, s.ar, &asOf)
	s.Require().NoError(err)
	s.True(early.Balance.IsZero())
}

func (s *LedgerScenarioSuite) TestBankImportCreatesDrafts() {
	csv := strings.Join([]string{
		"date,description,amount,reference",
		"2025-01-02,Client payment,250.00,DEP-1",
		"2025-01-03,Paper,-12.40,",
		"2025-01-04,Nothing,0,",
	}, "\n")

	result, err := s.svc.BankImport.ImportCSV(s.ctx, strings.NewReader(csv), portssvc.BankImportRequest{
		BankAccountID: s.bankUSD, OffsetAccountID: s.expense, CurrencyCode: "USD",
	}, "user-1")
	s.Require().NoError(err)
	s.Len(result.TransactionIDs, 2)
	s.Equal(1, result.Skipped)

	first := s.transaction(result.TransactionIDs[0])
	s.Equal(domain.Deposit, first.Type)
	s.Equal(domain.StatusDraft, first.Status)
	second := s.transaction(result.TransactionIDs[1])
	s.Equal(domain.ExpenseTxn, second.Type)
	s.True(second.Amount.Equal(d("12.40")))
	s.Empty(s.store.allEntries())
}

func (s *LedgerScenarioSuite) TestSeedChartIsIdempotent() {
	accounts := []domain.Account{
		{Code: "1300", Name: "Prepaid", AccountType: domain.Asset},
		{Code: "2300", Name: "GST payable", AccountType: domain.Liability},
	}
	taxes := []domain.SalesTax{{Name: "GST", Rate: d("0.05"), AccountID: "2300"}}

	first, err := s.svc.Account.SeedChart(s.ctx, accounts, taxes, "")
	s.Require().NoError(err)
	s.Equal(2, first.Accounts)
	s.Equal(1, first.SalesTaxes)

	_, err = s.svc.Account.SeedChart(s.ctx, accounts, taxes, "")
	s.Require().NoError(err)

	all, err := s.svc.Account.ListAccounts(s.ctx, 100, 0)
	s.Require().NoError(err)
	s.Len(all, 9)
}
