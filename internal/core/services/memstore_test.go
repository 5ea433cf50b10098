package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memState is everything the fake store holds. clone gives Begin a snapshot to restore on Rollback.
type memState struct {
	accounts   map[string]domain.Account
	currencies map[string]domain.Currency
	rates      []domain.ExchangeRate
	txns       map[string]domain.Transaction
	lines      map[string][]domain.LineItem
	entries    []domain.LedgerEntry
	apps       []domain.PaymentApplication
	taxes      map[string]domain.SalesTax
}

func newMemState() memState {
	return memState{
		accounts:   map[string]domain.Account{},
		currencies: map[string]domain.Currency{},
		txns:       map[string]domain.Transaction{},
		lines:      map[string][]domain.LineItem{},
		taxes:      map[string]domain.SalesTax{},
	}
}

func (s memState) clone() memState {
	c := newMemState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.currencies {
		c.currencies[k] = v
	}
	for k, v := range s.txns {
		c.txns[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]domain.LineItem(nil), v...)
	}
	for k, v := range s.taxes {
		c.taxes[k] = v
	}
	c.rates = append([]domain.ExchangeRate(nil), s.rates...)
	c.entries = append([]domain.LedgerEntry(nil), s.entries...)
	c.apps = append([]domain.PaymentApplication(nil), s.apps...)
	return c
}

type memTx struct {
	pgx.Tx
	snapshot memState
	done     bool
}

// memStore implements every repository port over maps. Row locks are simulated through
// the locked set: a locked transaction id fails FOR UPDATE lookups with a conflict.
type memStore struct {
	mu        sync.Mutex
	state     memState
	locked    map[string]bool
	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{state: newMemState(), locked: map[string]bool{}}
}

func (m *memStore) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:        m,
		AccountRepo:      m,
		CurrencyRepo:     m,
		ExchangeRateRepo: m,
		TransactionRepo:  m,
		LedgerRepo:       m,
		PaymentRepo:      m,
		SalesTaxRepo:     m,
	}
}

var (
	_ portsrepo.TransactionManager                 = (*memStore)(nil)
	_ portsrepo.AccountRepositoryFacade            = (*memStore)(nil)
	_ portsrepo.CurrencyRepositoryFacade           = (*memStore)(nil)
	_ portsrepo.ExchangeRateRepositoryFacade       = (*memStore)(nil)
	_ portsrepo.TransactionRepositoryFacade        = (*memStore)(nil)
	_ portsrepo.LedgerRepositoryFacade             = (*memStore)(nil)
	_ portsrepo.PaymentApplicationRepositoryFacade = (*memStore)(nil)
	_ portsrepo.SalesTaxRepositoryFacade           = (*memStore)(nil)
)

// --- TransactionManager ---

func (m *memStore) Begin(ctx context.Context) (pgx.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &memTx{snapshot: m.state.clone()}, nil
}

func (m *memStore) Commit(ctx context.Context, tx pgx.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := tx.(*memTx)
	t.done = true
	m.commits++
	return nil
}

func (m *memStore) Rollback(ctx context.Context, tx pgx.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := tx.(*memTx)
	if t.done {
		return nil
	}
	t.done = true
	m.state = t.snapshot
	m.rollbacks++
	return nil
}

// --- Accounts ---

func (m *memStore) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.state.accounts[accountID]
	if !ok {
		return nil, apperrors.NewNotFoundError("account " + accountID)
	}
	return &acc, nil
}

func (m *memStore) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.state.accounts {
		if acc.Code == code {
			a := acc
			return &a, nil
		}
	}
	return nil, apperrors.NewNotFoundError("account code " + code)
}

func (m *memStore) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.Account)
	for _, id := range accountIDs {
		if acc, ok := m.state.accounts[id]; ok {
			out[id] = acc
		}
	}
	return out, nil
}

func (m *memStore) sortedAccounts() []domain.Account {
	all := make([]domain.Account, 0, len(m.state.accounts))
	for _, acc := range m.state.accounts {
		all = append(all, acc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return all
}

func (m *memStore) FindControlAccount(ctx context.Context, accountType domain.AccountType) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.sortedAccounts() {
		if acc.AccountType == accountType && acc.IsActive {
			a := acc
			return &a, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("control account %s", accountType))
}

func (m *memStore) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sortedAccounts()
	if offset >= len(all) {
		return []domain.Account{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memStore) SaveAccount(ctx context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.state.accounts {
		if acc.Code == account.Code {
			return apperrors.ErrDuplicate
		}
	}
	m.state.accounts[account.AccountID] = account
	return nil
}

func (m *memStore) UpsertAccountByCode(ctx context.Context, account domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, acc := range m.state.accounts {
		if acc.Code == account.Code {
			acc.Name = account.Name
			acc.AccountType = account.AccountType
			acc.CurrencyCode = account.CurrencyCode
			acc.Description = account.Description
			acc.LastUpdatedAt = account.LastUpdatedAt
			acc.LastUpdatedBy = account.LastUpdatedBy
			m.state.accounts[id] = acc
			return &acc, nil
		}
	}
	m.state.accounts[account.AccountID] = account
	return &account, nil
}

func (m *memStore) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.state.accounts[accountID]
	if !ok {
		return apperrors.NewNotFoundError("account " + accountID)
	}
	acc.IsActive = false
	acc.LastUpdatedAt, acc.LastUpdatedBy = now, userID
	m.state.accounts[accountID] = acc
	return nil
}

func (m *memStore) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	return m.FindAccountsByIDs(ctx, accountIDs)
}

func (m *memStore) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, change := range balanceChanges {
		acc, ok := m.state.accounts[id]
		if !ok {
			return apperrors.NewNotFoundError("account " + id)
		}
		acc.Balance = acc.Balance.Add(change)
		acc.LastUpdatedAt, acc.LastUpdatedBy = now, userID
		m.state.accounts[id] = acc
	}
	return nil
}

func (m *memStore) SetAccountBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance decimal.Decimal, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.state.accounts[accountID]
	if !ok {
		return apperrors.NewNotFoundError("account " + accountID)
	}
	acc.Balance = balance
	acc.LastUpdatedAt, acc.LastUpdatedBy = now, userID
	m.state.accounts[accountID] = acc
	return nil
}

// --- Currencies ---

func (m *memStore) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.state.currencies[currencyCode]
	if !ok {
		return nil, apperrors.NewNotFoundError("currency " + currencyCode)
	}
	return &c, nil
}

func (m *memStore) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Currency, 0, len(m.state.currencies))
	for _, c := range m.state.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrencyCode < out[j].CurrencyCode })
	return out, nil
}

func (m *memStore) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.currencies[currency.CurrencyCode]; !ok {
		m.state.currencies[currency.CurrencyCode] = currency
	}
	return nil
}

// --- Exchange rates ---

func (m *memStore) FindEffectiveRate(ctx context.Context, pair domain.CurrencyPair, date time.Time) (*domain.ExchangeRate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	best, found := domain.EffectiveRate(m.state.rates, pair, date)
	if !found {
		return nil, apperrors.NewNotFoundError("exchange rate " + pair.String())
	}
	return &best, nil
}

func (m *memStore) ListExchangeRates(ctx context.Context, fromCurrency, toCurrency *string, effectiveDate *time.Time, page, pageSize int) ([]domain.ExchangeRate, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ExchangeRate
	for _, r := range m.state.rates {
		if fromCurrency != nil && r.FromCurrencyCode != *fromCurrency {
			continue
		}
		if toCurrency != nil && r.ToCurrencyCode != *toCurrency {
			continue
		}
		if effectiveDate != nil && r.DateEffective.After(*effectiveDate) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateEffective.After(out[j].DateEffective) })
	total := len(out)
	start := (page - 1) * pageSize
	if start >= total {
		return []domain.ExchangeRate{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (m *memStore) UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) (*domain.ExchangeRate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.state.rates {
		if r.Pair() == rate.Pair() && r.DateEffective.Equal(rate.DateEffective) && r.IsManual == rate.IsManual {
			r.Rate = rate.Rate
			r.LastUpdatedAt, r.LastUpdatedBy = rate.LastUpdatedAt, rate.LastUpdatedBy
			m.state.rates[i] = r
			return &r, nil
		}
	}
	m.state.rates = append(m.state.rates, rate)
	return &rate, nil
}

// --- Transactions ---

func (m *memStore) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.state.txns[transactionID]
	if !ok {
		return nil, apperrors.NewNotFoundError("transaction " + transactionID)
	}
	return &t, nil
}

func (m *memStore) FindLineItemsByTransactionID(ctx context.Context, transactionID string) ([]domain.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.LineItem(nil), m.state.lines[transactionID]...), nil
}

func (m *memStore) ListTransactions(ctx context.Context, filter portsrepo.ListTransactionsFilter) ([]domain.Transaction, *string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, t := range m.state.txns {
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].TransactionID > out[j].TransactionID
	})
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil, nil
}

func (m *memStore) ListOpenTransactionIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, t := range m.state.txns {
		if t.Type.IsReceivableOrPayable() && (t.Status == domain.StatusPending || t.Status == domain.StatusPaid) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memStore) CountTransactionsUsingRate(ctx context.Context, pair domain.CurrencyPair, date time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.state.txns {
		if t.CurrencyCode == pair.From && t.Date.Equal(date) && t.Status != domain.StatusDraft {
			n++
		}
	}
	return n, nil
}

func (m *memStore) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	if m.locked[transactionID] {
		return nil, apperrors.NewConcurrencyConflict("transaction", transactionID)
	}
	return m.FindTransactionByID(ctx, transactionID)
}

func (m *memStore) FindTransactionsByIDsForUpdate(ctx context.Context, tx pgx.Tx, transactionIDs []string) (map[string]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.Transaction)
	for _, id := range transactionIDs {
		if m.locked[id] {
			return nil, apperrors.NewConcurrencyConflict("transaction", id)
		}
		if t, ok := m.state.txns[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func (m *memStore) InsertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, lines []domain.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.txns[txn.TransactionID]; ok {
		return apperrors.ErrDuplicate
	}
	m.state.txns[txn.TransactionID] = txn
	m.state.lines[txn.TransactionID] = append([]domain.LineItem(nil), lines...)
	return nil
}

func (m *memStore) ReplaceTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, lines []domain.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.txns[txn.TransactionID]; !ok {
		return apperrors.NewNotFoundError("transaction " + txn.TransactionID)
	}
	m.state.txns[txn.TransactionID] = txn
	m.state.lines[txn.TransactionID] = append([]domain.LineItem(nil), lines...)
	return nil
}

func (m *memStore) UpdateSettlementInTx(ctx context.Context, tx pgx.Tx, transactionID string, balance decimal.Decimal, status domain.TransactionStatus, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.state.txns[transactionID]
	if !ok {
		return apperrors.NewNotFoundError("transaction " + transactionID)
	}
	t.Balance, t.Status = balance, status
	t.LastUpdatedAt, t.LastUpdatedBy = now, userID
	m.state.txns[transactionID] = t
	return nil
}

func (m *memStore) MarkCancelledInTx(ctx context.Context, tx pgx.Tx, transactionID string, version int, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.state.txns[transactionID]
	if !ok {
		return apperrors.NewNotFoundError("transaction " + transactionID)
	}
	t.Status, t.Balance, t.Version = domain.StatusCancelled, decimal.Zero, version
	t.LastUpdatedAt, t.LastUpdatedBy = now, userID
	m.state.txns[transactionID] = t
	return nil
}

func (m *memStore) DeleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.txns[transactionID]; !ok {
		return apperrors.NewNotFoundError("transaction " + transactionID)
	}
	delete(m.state.txns, transactionID)
	delete(m.state.lines, transactionID)
	kept := m.state.apps[:0]
	for _, a := range m.state.apps {
		if a.PaymentTransactionID != transactionID && a.TargetTransactionID != transactionID {
			kept = append(kept, a)
		}
	}
	m.state.apps = kept
	return nil
}

// --- Ledger ---

func (m *memStore) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range m.state.entries {
		if e.TransactionID == transactionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) SumAccountEntries(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range m.state.entries {
		if e.AccountID != accountID || (asOf != nil && e.Date.After(*asOf)) {
			continue
		}
		debits = debits.Add(e.Debit)
		credits = credits.Add(e.Credit)
	}
	return debits, credits, nil
}

func (m *memStore) TrialBalanceRows(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := make(map[string]*domain.TrialBalanceRow)
	for _, e := range m.state.entries {
		if asOf != nil && e.Date.After(*asOf) {
			continue
		}
		row, ok := totals[e.AccountID]
		if !ok {
			acc := m.state.accounts[e.AccountID]
			row = &domain.TrialBalanceRow{AccountID: acc.AccountID, AccountCode: acc.Code, AccountName: acc.Name, AccountType: acc.AccountType}
			totals[e.AccountID] = row
		}
		row.Debit = row.Debit.Add(e.Debit)
		row.Credit = row.Credit.Add(e.Credit)
	}
	rows := make([]domain.TrialBalanceRow, 0, len(totals))
	for _, r := range totals {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AccountCode < rows[j].AccountCode })
	return rows, nil
}

func (m *memStore) InsertEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.entries = append(m.state.entries, entries...)
	return nil
}

func (m *memStore) DeleteEntriesByTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed, kept []domain.LedgerEntry
	for _, e := range m.state.entries {
		if e.TransactionID == transactionID {
			removed = append(removed, e)
		} else {
			kept = append(kept, e)
		}
	}
	m.state.entries = kept
	return removed, nil
}

func (m *memStore) SumAccountEntriesInTx(ctx context.Context, tx pgx.Tx, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	return m.SumAccountEntries(ctx, accountID, nil)
}

// --- Payment applications ---

func (m *memStore) ListPaymentHistory(ctx context.Context, targetTransactionID string, includeReversed bool) ([]domain.PaymentHistoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PaymentHistoryItem
	for _, a := range m.state.apps {
		if a.TargetTransactionID != targetTransactionID || (!includeReversed && !a.IsActive()) {
			continue
		}
		p := m.state.txns[a.PaymentTransactionID]
		out = append(out, domain.PaymentHistoryItem{PaymentApplication: a, PaymentType: p.Type, PaymentDate: p.Date, PaymentReference: p.Reference})
	}
	return out, nil
}

func (m *memStore) InsertApplicationInTx(ctx context.Context, tx pgx.Tx, app domain.PaymentApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.apps = append(m.state.apps, app)
	return nil
}

func (m *memStore) findActive(match func(domain.PaymentApplication) bool) []domain.PaymentApplication {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PaymentApplication
	for _, a := range m.state.apps {
		if a.IsActive() && match(a) {
			out = append(out, a)
		}
	}
	return out
}

func (m *memStore) FindActiveApplicationsByPaymentInTx(ctx context.Context, tx pgx.Tx, paymentTransactionID string) ([]domain.PaymentApplication, error) {
	return m.findActive(func(a domain.PaymentApplication) bool { return a.PaymentTransactionID == paymentTransactionID }), nil
}

func (m *memStore) FindActiveApplicationsByTargetInTx(ctx context.Context, tx pgx.Tx, targetTransactionID string) ([]domain.PaymentApplication, error) {
	return m.findActive(func(a domain.PaymentApplication) bool { return a.TargetTransactionID == targetTransactionID }), nil
}

func (m *memStore) MarkApplicationsReversedInTx(ctx context.Context, tx pgx.Tx, applicationIDs []string, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]bool, len(applicationIDs))
	for _, id := range applicationIDs {
		ids[id] = true
	}
	for i, a := range m.state.apps {
		if ids[a.ApplicationID] && a.ReversedAt == nil {
			reversed := now
			a.ReversedAt = &reversed
			a.LastUpdatedAt, a.LastUpdatedBy = now, userID
			m.state.apps[i] = a
		}
	}
	return nil
}

func (m *memStore) sumActive(match func(domain.PaymentApplication) bool) decimal.Decimal {
	total := decimal.Zero
	for _, a := range m.findActive(match) {
		total = total.Add(a.AmountApplied)
	}
	return total
}

func (m *memStore) SumAppliedToTargetInTx(ctx context.Context, tx pgx.Tx, targetTransactionID string) (decimal.Decimal, error) {
	return m.sumActive(func(a domain.PaymentApplication) bool { return a.TargetTransactionID == targetTransactionID }), nil
}

func (m *memStore) SumAppliedFromPaymentInTx(ctx context.Context, tx pgx.Tx, paymentTransactionID string) (decimal.Decimal, error) {
	return m.sumActive(func(a domain.PaymentApplication) bool { return a.PaymentTransactionID == paymentTransactionID }), nil
}

// --- Sales taxes ---

func (m *memStore) FindSalesTaxesByIDs(ctx context.Context, salesTaxIDs []string) (map[string]domain.SalesTax, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.SalesTax)
	for _, id := range salesTaxIDs {
		if t, ok := m.state.taxes[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func (m *memStore) UpsertSalesTaxByName(ctx context.Context, tax domain.SalesTax) (*domain.SalesTax, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.state.taxes {
		if t.Name == tax.Name {
			t.Rate, t.AccountID, t.IsActive = tax.Rate, tax.AccountID, tax.IsActive
			m.state.taxes[id] = t
			return &t, nil
		}
	}
	m.state.taxes[tax.SalesTaxID] = tax
	return &tax, nil
}

// --- helpers for tests ---

func (m *memStore) allEntries() []domain.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.LedgerEntry(nil), m.state.entries...)
}

func (m *memStore) appCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.apps)
}
