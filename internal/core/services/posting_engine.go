package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type postingEngine struct {
	BaseService
	homeCurrency string
	accountRepo  portsrepo.AccountReader
	taxRepo      portsrepo.SalesTaxRepositoryFacade
	resolver     portssvc.ExchangeRateReaderSvc
	validate     *validator.Validate
}

// NewPostingEngine creates a posting engine that books in homeCurrency.
func NewPostingEngine(homeCurrency string, accountRepo portsrepo.AccountReader, taxRepo portsrepo.SalesTaxRepositoryFacade, resolver portssvc.ExchangeRateReaderSvc) portssvc.PostingEngine {
	return &postingEngine{
		homeCurrency: strings.ToUpper(homeCurrency),
		accountRepo:  accountRepo,
		taxRepo:      taxRepo,
		resolver:     resolver,
		validate:     validator.New(),
	}
}

// postingRow is a ledger row under construction, still in home currency but not yet an entry.
type postingRow struct {
	accountID   string
	side        domain.Side
	amount      decimal.Decimal
	description string
	control     bool // control legs are never adjusted for rounding drift
}

// Post validates a transaction, converts it to home currency and derives its balanced
// ledger rows from the template of its type. Nothing is written.
func (e *postingEngine) Post(ctx context.Context, txn domain.Transaction, lines []domain.LineItem) (*portssvc.PostingResult, error) {
	txn.CurrencyCode = strings.ToUpper(txn.CurrencyCode)
	txn.Date = domain.DateOnly(txn.Date)

	if err := e.validateHeader(txn); err != nil {
		return nil, err
	}

	tmpl, err := templateFor(txn)
	if err != nil {
		return nil, err
	}

	items, err := e.normaliseLines(txn, lines)
	if err != nil {
		return nil, err
	}

	taxes, err := e.applyTaxes(ctx, txn, items)
	if err != nil {
		return nil, err
	}

	total, err := transactionTotal(txn, items)
	if err != nil {
		return nil, err
	}
	txn.Amount = total

	rate, err := e.rateFor(ctx, txn)
	if err != nil {
		return nil, err
	}
	txn.ExchangeRate = rate

	rows, err := e.buildRows(ctx, txn, tmpl, items, taxes)
	if err != nil {
		return nil, err
	}

	converted := 0
	if !rate.Equal(decimal.NewFromInt(1)) {
		converted = len(rows)
	}
	if err := absorbDrift(rows, converted); err != nil {
		var unbalanced *apperrors.UnbalancedError
		if errors.As(err, &unbalanced) {
			unbalanced.TransactionID = txn.TransactionID
			e.LogError(ctx, err, "Posting is unbalanced after remainder correction",
				slog.String("transaction_id", txn.TransactionID),
				slog.String("drift", unbalanced.Drift().String()))
		}
		return nil, err
	}

	entries := e.toEntries(txn, rows)
	debits, credits := domain.SumEntries(entries)
	if !debits.Equal(credits) {
		err := &apperrors.UnbalancedError{TransactionID: txn.TransactionID, Debits: debits, Credits: credits}
		e.LogError(ctx, err, "Posting is unbalanced", slog.String("transaction_id", txn.TransactionID))
		return nil, err
	}

	txn.HomeAmount = debits
	if tmpl.header != headerNone {
		txn.HomeAmount = domain.ConvertToHome(total, rate)
	}

	return &portssvc.PostingResult{Transaction: txn, LineItems: items, Entries: entries}, nil
}

func (e *postingEngine) validateHeader(txn domain.Transaction) error {
	if !txn.Type.IsValid() {
		return apperrors.NewFieldValidationError("type", fmt.Sprintf("unknown transaction type '%s'", txn.Type))
	}
	if txn.Date.IsZero() {
		return apperrors.NewFieldValidationError("date", "date is required")
	}
	if err := e.validate.Struct(txn); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperrors.NewFieldValidationError(verrs[0].Field(), fmt.Sprintf("failed '%s' validation", verrs[0].Tag()))
		}
		return apperrors.NewValidationError(err.Error())
	}
	if txn.ExchangeRate.IsNegative() {
		return apperrors.NewFieldValidationError("exchangeRate", "exchange rate must be positive")
	}
	return nil
}

// normaliseLines recomputes every line amount. A caller-supplied amount, zero included, must
// agree with quantity * unitPrice within tolerance.
func (e *postingEngine) normaliseLines(txn domain.Transaction, lines []domain.LineItem) ([]domain.LineItem, error) {
	if len(lines) == 0 {
		return nil, apperrors.NewFieldValidationError("lineItems", "at least one line item is required")
	}

	items := make([]domain.LineItem, len(lines))
	for i, li := range lines {
		if !li.Quantity.IsPositive() {
			return nil, apperrors.NewFieldValidationError(fmt.Sprintf("lineItems[%d].quantity", i), "quantity must be positive")
		}
		if li.UnitPrice.IsNegative() {
			return nil, &apperrors.InvalidLineItemError{Index: i, Reason: "unit price cannot be negative"}
		}

		amount := domain.LineAmount(li.Quantity, li.UnitPrice)
		if li.SuppliedAmount != nil && !domain.MoneyEqual(*li.SuppliedAmount, amount) {
			return nil, &apperrors.InvalidLineItemError{
				Index:  i,
				Reason: fmt.Sprintf("amount %s does not match quantity * unit price = %s", li.SuppliedAmount.String(), amount.StringFixed(2)),
			}
		}

		if txn.Type == domain.JournalEntry {
			if li.Side != domain.Debit && li.Side != domain.Credit {
				return nil, &apperrors.InvalidLineItemError{Index: i, Reason: "journal entry lines need side DEBIT or CREDIT"}
			}
			if li.SalesTaxID != nil {
				return nil, &apperrors.InvalidLineItemError{Index: i, Reason: "journal entry lines cannot carry a sales tax"}
			}
			if li.AccountID == "" {
				return nil, &apperrors.InvalidLineItemError{Index: i, Reason: "account is required"}
			}
		} else {
			li.Side = ""
		}

		if li.LineItemID == "" {
			li.LineItemID = uuid.NewString()
		}
		li.TransactionID = txn.TransactionID
		li.LineNo = i + 1
		li.Amount = amount
		li.SuppliedAmount = nil
		li.TaxAmount = decimal.Zero
		items[i] = li
	}
	return items, nil
}

// applyTaxes computes each line's tax and returns the taxes referenced.
func (e *postingEngine) applyTaxes(ctx context.Context, txn domain.Transaction, items []domain.LineItem) (map[string]domain.SalesTax, error) {
	var ids []string
	for _, li := range items {
		if li.SalesTaxID != nil {
			ids = append(ids, *li.SalesTaxID)
		}
	}
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	taxes, err := e.taxRepo.FindSalesTaxesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales taxes: %w", err)
	}

	for i := range items {
		if items[i].SalesTaxID == nil {
			continue
		}
		tax, ok := taxes[*items[i].SalesTaxID]
		if !ok {
			return nil, &apperrors.InvalidLineItemError{Index: i, Reason: fmt.Sprintf("sales tax %s not found", *items[i].SalesTaxID)}
		}
		if !tax.IsActive {
			return nil, &apperrors.InvalidLineItemError{Index: i, Reason: fmt.Sprintf("sales tax %s is inactive", tax.Name)}
		}
		items[i].TaxAmount = tax.TaxOn(items[i].Amount)
	}
	return taxes, nil
}

// transactionTotal is the sum of line amounts and taxes, or the debit side of a journal entry.
func transactionTotal(txn domain.Transaction, items []domain.LineItem) (decimal.Decimal, error) {
	total := decimal.Zero
	if txn.Type == domain.JournalEntry {
		credits := decimal.Zero
		for _, li := range items {
			if li.Side == domain.Debit {
				total = total.Add(li.Amount)
			} else {
				credits = credits.Add(li.Amount)
			}
		}
		if !total.Equal(credits) {
			return decimal.Zero, apperrors.NewFieldValidationError("lineItems",
				fmt.Sprintf("journal entry debits %s do not equal credits %s", total.StringFixed(2), credits.StringFixed(2)))
		}
	} else {
		for _, li := range items {
			total = total.Add(li.Amount).Add(li.TaxAmount)
		}
	}
	if !total.IsPositive() {
		return decimal.Zero, apperrors.NewFieldValidationError("amount", "transaction total must be positive")
	}
	return total, nil
}

// rateFor returns 1 for home-currency transactions, the inline rate when one is given,
// and the resolved rate otherwise.
func (e *postingEngine) rateFor(ctx context.Context, txn domain.Transaction) (decimal.Decimal, error) {
	if txn.CurrencyCode == e.homeCurrency {
		return decimal.NewFromInt(1), nil
	}
	if txn.ExchangeRate.IsPositive() {
		return txn.ExchangeRate, nil
	}

	pair := domain.NewCurrencyPair(txn.CurrencyCode, e.homeCurrency)
	rate, found, err := e.resolver.Resolve(ctx, pair, txn.Date)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return decimal.Zero, &apperrors.ExchangeRateMissingError{From: pair.From, To: pair.To, Date: txn.Date}
	}
	return rate.Rate, nil
}

func (e *postingEngine) controlAccount(ctx context.Context, accountType domain.AccountType) (*domain.Account, error) {
	acc, err := e.accountRepo.FindControlAccount(ctx, accountType)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("no active %s account is configured", strings.ToLower(string(accountType))))
		}
		return nil, fmt.Errorf("failed to find %s control account: %w", accountType, err)
	}
	return acc, nil
}

// buildRows derives the unadjusted home-currency rows of a posting. Zero amounts are skipped.
func (e *postingEngine) buildRows(ctx context.Context, txn domain.Transaction, tmpl postingTemplate, items []domain.LineItem, taxes map[string]domain.SalesTax) ([]postingRow, error) {
	headerAccountID := ""
	switch tmpl.header {
	case headerControl:
		acc, err := e.controlAccount(ctx, tmpl.control)
		if err != nil {
			return nil, err
		}
		headerAccountID = acc.AccountID
	case headerAccount:
		if txn.AccountID == "" {
			return nil, apperrors.NewFieldValidationError("accountID", fmt.Sprintf("%s requires an account", txn.Type))
		}
		headerAccountID = txn.AccountID
	}

	lineDefaultID := ""
	if tmpl.lineDefault != "" {
		acc, err := e.controlAccount(ctx, tmpl.lineDefault)
		if err != nil {
			return nil, err
		}
		lineDefaultID = acc.AccountID
	}

	ids := []string{headerAccountID, lineDefaultID}
	for i := range items {
		if items[i].AccountID == "" {
			if lineDefaultID == "" {
				return nil, &apperrors.InvalidLineItemError{Index: i, Reason: "account is required"}
			}
			items[i].AccountID = lineDefaultID
		}
		ids = append(ids, items[i].AccountID)
	}
	for _, tax := range taxes {
		ids = append(ids, tax.AccountID)
	}
	ids = uniqueStrings(ids)

	accounts, err := e.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	if headerAccountID != "" {
		acc, ok := accounts[headerAccountID]
		if !ok {
			return nil, apperrors.NewFieldValidationError("accountID", fmt.Sprintf("account %s not found", headerAccountID))
		}
		if !acc.IsActive {
			return nil, apperrors.NewFieldValidationError("accountID", fmt.Sprintf("account %s is inactive", acc.Code))
		}
		if tmpl.header == headerAccount && acc.CurrencyCode != "" && acc.CurrencyCode != txn.CurrencyCode {
			return nil, apperrors.NewFieldValidationError("currencyCode",
				fmt.Sprintf("account %s holds %s, transaction is in %s", acc.Code, acc.CurrencyCode, txn.CurrencyCode))
		}
	}
	for i, li := range items {
		acc, ok := accounts[li.AccountID]
		if !ok {
			return nil, &apperrors.InvalidLineItemError{Index: i, Reason: fmt.Sprintf("account %s not found", li.AccountID)}
		}
		if !acc.IsActive {
			return nil, &apperrors.InvalidLineItemError{Index: i, Reason: fmt.Sprintf("account %s is inactive", acc.Code)}
		}
	}
	for _, tax := range taxes {
		acc, ok := accounts[tax.AccountID]
		if !ok || !acc.IsActive {
			return nil, apperrors.NewValidationError(fmt.Sprintf("sales tax %s posts to a missing or inactive account", tax.Name))
		}
	}

	rate := txn.ExchangeRate
	rows := make([]postingRow, 0, len(items)+len(taxes)+1)
	add := func(r postingRow) {
		if r.amount.IsZero() {
			return
		}
		rows = append(rows, r)
	}

	if tmpl.header != headerNone {
		add(postingRow{
			accountID:   headerAccountID,
			side:        tmpl.headerSide,
			amount:      domain.ConvertToHome(txn.Amount, rate),
			description: txn.Reference,
			control:     true,
		})
	}

	taxTotals := make(map[string]decimal.Decimal)
	var taxOrder []string
	for _, li := range items {
		side := tmpl.lineSide
		if tmpl.header == headerNone {
			side = li.Side
		}
		desc := li.Description
		if desc == "" {
			desc = txn.Reference
		}
		add(postingRow{
			accountID:   li.AccountID,
			side:        side,
			amount:      domain.ConvertToHome(li.Amount, rate),
			description: desc,
		})
		if li.SalesTaxID != nil && li.TaxAmount.IsPositive() {
			taxAccount := taxes[*li.SalesTaxID].AccountID
			if _, seen := taxTotals[taxAccount]; !seen {
				taxOrder = append(taxOrder, taxAccount)
			}
			taxTotals[taxAccount] = taxTotals[taxAccount].Add(li.TaxAmount)
		}
	}
	for _, accountID := range taxOrder {
		add(postingRow{
			accountID:   accountID,
			side:        tmpl.lineSide,
			amount:      domain.ConvertToHome(taxTotals[accountID], rate),
			description: "Sales tax",
		})
	}

	if len(rows) == 0 {
		return nil, apperrors.NewFieldValidationError("amount", "transaction total must be positive")
	}
	return rows, nil
}

// absorbDrift moves the residual left by rounding onto the largest non-control row.
// The first of several equally large rows takes it. A drift beyond what rounding can
// explain, or an adjustment that would empty a row, is Unbalanced.
func absorbDrift(rows []postingRow, convertedRows int) error {
	debits, credits := decimal.Zero, decimal.Zero
	for _, r := range rows {
		if r.side == domain.Debit {
			debits = debits.Add(r.amount)
		} else {
			credits = credits.Add(r.amount)
		}
	}
	drift := debits.Sub(credits)
	if drift.IsZero() {
		return nil
	}
	unbalanced := &apperrors.UnbalancedError{Debits: debits, Credits: credits}
	if drift.Abs().GreaterThan(domain.RoundingBudget(convertedRows)) {
		return unbalanced
	}

	target := -1
	for i, r := range rows {
		if r.control {
			continue
		}
		if target == -1 || r.amount.GreaterThan(rows[target].amount) {
			target = i
		}
	}
	if target == -1 {
		return unbalanced
	}

	adjusted := rows[target].amount.Add(drift)
	if rows[target].side == domain.Debit {
		adjusted = rows[target].amount.Sub(drift)
	}
	if !adjusted.IsPositive() {
		return unbalanced
	}
	rows[target].amount = adjusted
	return nil
}

func (e *postingEngine) toEntries(txn domain.Transaction, rows []postingRow) []domain.LedgerEntry {
	now := e.Now()
	entries := make([]domain.LedgerEntry, len(rows))
	for i, r := range rows {
		entry := domain.LedgerEntry{
			EntryID:       uuid.NewString(),
			TransactionID: txn.TransactionID,
			AccountID:     r.accountID,
			Date:          txn.Date,
			Description:   r.description,
			Debit:         decimal.Zero,
			Credit:        decimal.Zero,
			CreatedAt:     now,
		}
		if r.side == domain.Debit {
			entry.Debit = r.amount
		} else {
			entry.Credit = r.amount
		}
		entries[i] = entry
	}
	return entries
}
