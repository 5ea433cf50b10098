package dto

import (
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the structure for creating a new account.
type CreateAccountRequest struct {
	Code         string             `json:"code" binding:"required,max=20"`
	Name         string             `json:"name" binding:"required,max=255"`
	AccountType  domain.AccountType `json:"accountType" binding:"required"`
	CurrencyCode string             `json:"currencyCode,omitempty" binding:"omitempty,len=3,uppercase"`
	Description  string             `json:"description,omitempty"`
}

// AccountResponse defines the structure for API responses containing account details.
type AccountResponse struct {
	AccountID     string             `json:"accountID"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	AccountType   domain.AccountType `json:"accountType"`
	CurrencyCode  string             `json:"currencyCode,omitempty"`
	Description   string             `json:"description,omitempty"`
	IsActive      bool               `json:"isActive"`
	Balance       decimal.Decimal    `json:"balance"`
	CreatedAt     time.Time          `json:"createdAt"`
	CreatedBy     string             `json:"createdBy"`
	LastUpdatedAt time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy string             `json:"lastUpdatedBy"`
}

// AccountBalanceResponse is an account balance derived from the ledger.
type AccountBalanceResponse struct {
	AccountID  string          `json:"accountID"`
	NormalSide domain.Side     `json:"normalSide"`
	Debits     decimal.Decimal `json:"debits"`
	Credits    decimal.Decimal `json:"credits"`
	Balance    decimal.Decimal `json:"balance"`
	AsOf       *time.Time      `json:"asOf,omitempty"`
}

// TrialBalanceResponse is the trial balance report payload.
type TrialBalanceResponse struct {
	AsOf         *time.Time               `json:"asOf,omitempty"`
	Rows         []domain.TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal          `json:"totalDebits"`
	TotalCredits decimal.Decimal          `json:"totalCredits"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		Code:          acc.Code,
		Name:          acc.Name,
		AccountType:   acc.AccountType,
		CurrencyCode:  acc.CurrencyCode,
		Description:   acc.Description,
		IsActive:      acc.IsActive,
		Balance:       acc.Balance,
		CreatedAt:     acc.CreatedAt,
		CreatedBy:     acc.CreatedBy,
		LastUpdatedAt: acc.LastUpdatedAt,
		LastUpdatedBy: acc.LastUpdatedBy,
	}
}

// ToAccountBalanceResponse converts a domain.AccountBalance.
func ToAccountBalanceResponse(b domain.AccountBalance) AccountBalanceResponse {
	return AccountBalanceResponse{
		AccountID:  b.AccountID,
		NormalSide: b.NormalSide,
		Debits:     b.Debits,
		Credits:    b.Credits,
		Balance:    b.Balance,
		AsOf:       b.AsOf,
	}
}

// ToTrialBalanceResponse converts a domain.TrialBalance.
func ToTrialBalanceResponse(tb domain.TrialBalance) TrialBalanceResponse {
	return TrialBalanceResponse{
		AsOf:         tb.AsOf,
		Rows:         tb.Rows,
		TotalDebits:  tb.TotalDebits,
		TotalCredits: tb.TotalCredits,
	}
}

// ListAccountsParams holds query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ListAccountsResponse is a page of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
