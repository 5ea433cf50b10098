package accounting

import (
	"fmt"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ValidateEntry checks that exactly one side of an entry carries a positive amount.
func ValidateEntry(e domain.LedgerEntry) error {
	if e.AccountID == "" {
		return fmt.Errorf("ledger entry %s has no account", e.EntryID)
	}
	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return fmt.Errorf("ledger entry %s has a negative amount", e.EntryID)
	}
	if e.Debit.IsPositive() == e.Credit.IsPositive() {
		return fmt.Errorf("ledger entry %s must carry exactly one of debit or credit", e.EntryID)
	}
	return nil
}

// ValidateEntriesBalance checks every entry and that debits equal credits for each
// transaction represented in entries.
func ValidateEntriesBalance(entries []domain.LedgerEntry) error {
	type totals struct{ debits, credits decimal.Decimal }
	perTxn := make(map[string]*totals)
	var order []string

	for _, e := range entries {
		if err := ValidateEntry(e); err != nil {
			return err
		}
		t, ok := perTxn[e.TransactionID]
		if !ok {
			t = &totals{debits: decimal.Zero, credits: decimal.Zero}
			perTxn[e.TransactionID] = t
			order = append(order, e.TransactionID)
		}
		t.debits = t.debits.Add(e.Debit)
		t.credits = t.credits.Add(e.Credit)
	}

	for _, id := range order {
		t := perTxn[id]
		if !t.debits.Equal(t.credits) {
			return fmt.Errorf("entries of transaction %s do not balance: debits %s, credits %s", id, t.debits.String(), t.credits.String())
		}
	}
	return nil
}
