package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a single debit or credit row against one account, in home currency.
// Exactly one of Debit and Credit is non-zero.
type LedgerEntry struct {
	EntryID       string          `json:"entryID"`
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Side returns the side carrying the amount.
func (e LedgerEntry) Side() Side {
	if e.Debit.IsPositive() {
		return Debit
	}
	return Credit
}

// Amount returns the non-zero amount of the row.
func (e LedgerEntry) Amount() decimal.Decimal {
	if e.Debit.IsPositive() {
		return e.Debit
	}
	return e.Credit
}

// SignedFor returns the entry's effect on a balance whose normal side is normal.
func (e LedgerEntry) SignedFor(normal Side) decimal.Decimal {
	if normal == Debit {
		return e.Debit.Sub(e.Credit)
	}
	return e.Credit.Sub(e.Debit)
}

// SumEntries totals the debits and credits of a set of entries.
func SumEntries(entries []LedgerEntry) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debits = debits.Add(e.Debit)
		credits = credits.Add(e.Credit)
	}
	return debits, credits
}

// BalanceChanges aggregates the signed effect of entries per account.
func BalanceChanges(entries []LedgerEntry, accountTypes map[string]AccountType) map[string]decimal.Decimal {
	changes := make(map[string]decimal.Decimal)
	for _, e := range entries {
		normal := accountTypes[e.AccountID].NormalSide()
		changes[e.AccountID] = changes[e.AccountID].Add(e.SignedFor(normal))
	}
	return changes
}
