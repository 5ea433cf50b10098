package dto

import (
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one line of a transaction as entered by the user.
type LineItemRequest struct {
	Description string           `json:"description" binding:"max=500"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unitPrice"`
	Amount      *decimal.Decimal `json:"amount,omitempty"` // Optional; checked against quantity * unitPrice
	AccountID   string           `json:"accountID"`
	SalesTaxID  *string          `json:"salesTaxID,omitempty"`
	Side        domain.Side      `json:"side,omitempty" binding:"omitempty,oneof=DEBIT CREDIT"` // journal entries only
}

// ApplicationRequest applies part of a payment-type transaction to an invoice or bill.
type ApplicationRequest struct {
	TargetID string          `json:"targetID" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// TransactionFields are the editable parts of a transaction.
type TransactionFields struct {
	Date         time.Time          `json:"date" binding:"required"`
	DueDate      *time.Time         `json:"dueDate,omitempty"`
	Reference    string             `json:"reference" binding:"max=100"`
	ContactID    *string            `json:"contactID,omitempty"`
	ContactType  domain.ContactType `json:"contactType,omitempty" binding:"omitempty,oneof=customer vendor"`
	AccountID    string             `json:"accountID,omitempty"`
	CurrencyCode string             `json:"currencyCode" binding:"required,len=3,uppercase"`
	ExchangeRate *decimal.Decimal   `json:"exchangeRate,omitempty"` // Inline rate (transaction_only scope)
	Draft        bool               `json:"draft"`
	LineItems    []LineItemRequest  `json:"lineItems" binding:"dive"`
}

// CreateTransactionRequest defines the structure for creating and posting a transaction.
type CreateTransactionRequest struct {
	Type domain.TransactionType `json:"type" binding:"required"`
	TransactionFields
	Applications []ApplicationRequest `json:"applications,omitempty" binding:"omitempty,dive"`
}

// UpdateTransactionRequest replaces a transaction's fields; the ledger is reversed and reposted.
type UpdateTransactionRequest struct {
	TransactionFields
	ExpectedVersion *int `json:"expectedVersion,omitempty"`
}

// ListTransactionsParams holds query parameters for listing transactions.
type ListTransactionsParams struct {
	Type      string `form:"type"`
	Status    string `form:"status"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// LineItemResponse is a stored line item.
type LineItemResponse struct {
	LineItemID  string          `json:"lineItemID"`
	LineNo      int             `json:"lineNo"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Amount      decimal.Decimal `json:"amount"`
	AccountID   string          `json:"accountID"`
	SalesTaxID  *string         `json:"salesTaxID,omitempty"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	Side        domain.Side     `json:"side,omitempty"`
}

// LedgerEntryResponse is a posted ledger row.
type LedgerEntryResponse struct {
	EntryID     string          `json:"entryID"`
	AccountID   string          `json:"accountID"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TransactionResponse defines the structure for API responses containing transaction details.
type TransactionResponse struct {
	TransactionID   string                   `json:"transactionID"`
	Type            domain.TransactionType   `json:"type"`
	Date            time.Time                `json:"date"`
	DueDate         *time.Time               `json:"dueDate,omitempty"`
	Reference       string                   `json:"reference"`
	ContactID       *string                  `json:"contactID,omitempty"`
	ContactType     domain.ContactType       `json:"contactType,omitempty"`
	AccountID       string                   `json:"accountID,omitempty"`
	CurrencyCode    string                   `json:"currencyCode"`
	ExchangeRate    decimal.Decimal          `json:"exchangeRate"`
	Amount          decimal.Decimal          `json:"amount"`
	HomeAmount      decimal.Decimal          `json:"homeAmount"`
	Balance         decimal.Decimal          `json:"balance"`
	Status          domain.TransactionStatus `json:"status"`
	EffectiveStatus domain.TransactionStatus `json:"effectiveStatus"`
	Version         int                      `json:"version"`
	LineItems       []LineItemResponse       `json:"lineItems,omitempty"`
	Entries         []LedgerEntryResponse    `json:"entries,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	CreatedBy       string                   `json:"createdBy"`
	LastUpdatedAt   time.Time                `json:"lastUpdatedAt"`
	LastUpdatedBy   string                   `json:"lastUpdatedBy"`
}

// ListTransactionsResponse is a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a transaction header to its response without lines or entries.
func ToTransactionResponse(t domain.Transaction, today time.Time) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		Type:            t.Type,
		Date:            t.Date,
		DueDate:         t.DueDate,
		Reference:       t.Reference,
		ContactID:       t.ContactID,
		ContactType:     t.ContactType,
		AccountID:       t.AccountID,
		CurrencyCode:    t.CurrencyCode,
		ExchangeRate:    t.ExchangeRate,
		Amount:          t.Amount,
		HomeAmount:      t.HomeAmount,
		Balance:         t.Balance,
		Status:          t.Status,
		EffectiveStatus: t.EffectiveStatus(today),
		Version:         t.Version,
		CreatedAt:       t.CreatedAt,
		CreatedBy:       t.CreatedBy,
		LastUpdatedAt:   t.LastUpdatedAt,
		LastUpdatedBy:   t.LastUpdatedBy,
	}
}

// ToTransactionDetailResponse converts a transaction with its lines and entries.
func ToTransactionDetailResponse(d domain.TransactionDetail, today time.Time) TransactionResponse {
	resp := ToTransactionResponse(d.Transaction, today)
	resp.LineItems = make([]LineItemResponse, len(d.LineItems))
	for i, li := range d.LineItems {
		resp.LineItems[i] = LineItemResponse{
			LineItemID:  li.LineItemID,
			LineNo:      li.LineNo,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Amount:      li.Amount,
			AccountID:   li.AccountID,
			SalesTaxID:  li.SalesTaxID,
			TaxAmount:   li.TaxAmount,
			Side:        li.Side,
		}
	}
	resp.Entries = ToLedgerEntryResponses(d.Entries)
	return resp
}

// ToLedgerEntryResponses converts ledger entries.
func ToLedgerEntryResponses(entries []domain.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LedgerEntryResponse{
			EntryID:     e.EntryID,
			AccountID:   e.AccountID,
			Date:        e.Date,
			Description: e.Description,
			Debit:       e.Debit,
			Credit:      e.Credit,
		}
	}
	return out
}
