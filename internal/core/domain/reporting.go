package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single row in a trial balance report
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalance is the set of per-account totals as of a date.
type TrialBalance struct {
	AsOf         *time.Time        `json:"asOf,omitempty"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"totalDebits"`
	TotalCredits decimal.Decimal   `json:"totalCredits"`
}

// AccountBalance is an account's balance on its normal side, derived from ledger entries.
type AccountBalance struct {
	AccountID  string          `json:"accountID"`
	NormalSide Side            `json:"normalSide"`
	Debits     decimal.Decimal `json:"debits"`
	Credits    decimal.Decimal `json:"credits"`
	Balance    decimal.Decimal `json:"balance"`
	AsOf       *time.Time      `json:"asOf,omitempty"`
}

// NewAccountBalance computes the normal-side balance from debit and credit totals.
func NewAccountBalance(accountID string, accountType AccountType, debits, credits decimal.Decimal, asOf *time.Time) AccountBalance {
	normal := accountType.NormalSide()
	balance := credits.Sub(debits)
	if normal == Debit {
		balance = debits.Sub(credits)
	}
	return AccountBalance{
		AccountID:  accountID,
		NormalSide: normal,
		Debits:     debits,
		Credits:    credits,
		Balance:    balance,
		AsOf:       asOf,
	}
}
