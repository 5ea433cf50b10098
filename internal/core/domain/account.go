package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset              AccountType = "ASSET"
	Liability          AccountType = "LIABILITY"
	Equity             AccountType = "EQUITY"
	Income             AccountType = "INCOME"
	Expense            AccountType = "EXPENSE"
	Bank               AccountType = "BANK"
	CreditCard         AccountType = "CREDIT_CARD"
	AccountsReceivable AccountType = "ACCOUNTS_RECEIVABLE"
	AccountsPayable    AccountType = "ACCOUNTS_PAYABLE"
)

// AccountTypes lists every supported account type.
func AccountTypes() []AccountType {
	return []AccountType{Asset, Liability, Equity, Income, Expense, Bank, CreditCard, AccountsReceivable, AccountsPayable}
}

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	for _, known := range AccountTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// NormalSide returns the side on which the account type's balance grows.
func (t AccountType) NormalSide() Side {
	switch t {
	case Asset, Expense, Bank, AccountsReceivable:
		return Debit
	default:
		return Credit
	}
}

// Account represents a financial account within the core domain.
// This is the primary representation used by services.
type Account struct {
	AccountID    string      `json:"accountID"`
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	AccountType  AccountType `json:"accountType"`
	CurrencyCode string      `json:"currencyCode"` // Empty means home currency
	Description  string      `json:"description"`
	IsActive     bool        `json:"isActive"`
	AuditFields
	Balance decimal.Decimal `json:"balance"` // Cached; rebuilt from ledger entries on demand
}
