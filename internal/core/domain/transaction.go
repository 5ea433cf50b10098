package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side indicates whether a ledger row is a Debit or a Credit.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}

// TransactionType is the closed set of user-entered financial documents.
type TransactionType string

const (
	Invoice        TransactionType = "invoice"
	Bill           TransactionType = "bill"
	ExpenseTxn     TransactionType = "expense"
	Payment        TransactionType = "payment"
	Deposit        TransactionType = "deposit"
	Transfer       TransactionType = "transfer"
	JournalEntry   TransactionType = "journal_entry"
	SalesReceipt   TransactionType = "sales_receipt"
	CustomerCredit TransactionType = "customer_credit"
	VendorCredit   TransactionType = "vendor_credit"
	Cheque         TransactionType = "cheque"
)

// TransactionTypes lists every transaction type.
func TransactionTypes() []TransactionType {
	return []TransactionType{
		Invoice, Bill, ExpenseTxn, Payment, Deposit, Transfer,
		JournalEntry, SalesReceipt, CustomerCredit, VendorCredit, Cheque,
	}
}

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	for _, known := range TransactionTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// IsReceivableOrPayable reports whether the type carries a balance that payments settle.
func (t TransactionType) IsReceivableOrPayable() bool {
	return t == Invoice || t == Bill
}

// CanApplyToTargets reports whether the type can be applied against invoices or bills.
// Only types that post to a control account qualify; a sales receipt credits income
// directly, so it records a cash sale and never settles a receivable.
func (t TransactionType) CanApplyToTargets() bool {
	switch t {
	case Payment, CustomerCredit, VendorCredit:
		return true
	}
	return false
}

// TransactionStatus is the stored lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusDraft           TransactionStatus = "draft"
	StatusPending         TransactionStatus = "pending"
	StatusPaid            TransactionStatus = "paid"
	StatusOverdue         TransactionStatus = "overdue" // derived only, never stored
	StatusCancelled       TransactionStatus = "cancelled"
	StatusUnappliedCredit TransactionStatus = "unapplied_credit"
)

// ContactType tells which side of the business a contact sits on.
type ContactType string

const (
	Customer ContactType = "customer"
	Vendor   ContactType = "vendor"
)

// Transaction is the header of a user-entered financial document.
type Transaction struct {
	TransactionID   string            `json:"transactionID" validate:"required"`
	Type            TransactionType   `json:"type" validate:"required"`
	Date            time.Time         `json:"date" validate:"required"`
	DueDate         *time.Time        `json:"dueDate,omitempty"`
	Reference       string            `json:"reference" validate:"max=100"`
	ContactID       *string           `json:"contactID,omitempty"`
	ContactType     ContactType       `json:"contactType,omitempty" validate:"omitempty,oneof=customer vendor"`
	AccountID       string            `json:"accountID,omitempty"` // Bank/card/source account for header-leg templates
	CurrencyCode    string            `json:"currencyCode" validate:"required,len=3,uppercase"`
	ExchangeRate    decimal.Decimal   `json:"exchangeRate"` // Rate to home currency at Date
	Amount          decimal.Decimal   `json:"amount"`       // Total in transaction currency
	HomeAmount      decimal.Decimal   `json:"homeAmount"`
	Status          TransactionStatus `json:"status"`
	Balance         decimal.Decimal   `json:"balance"` // Remaining amount owed/unapplied, transaction currency
	Version         int               `json:"version"`
	AuditFields
}

// EffectiveStatus returns the status as seen on the given day, deriving overdue.
func (t Transaction) EffectiveStatus(today time.Time) TransactionStatus {
	if t.Status == StatusPending && t.DueDate != nil && DateOnly(*t.DueDate).Before(DateOnly(today)) {
		return StatusOverdue
	}
	return t.Status
}

// IsForeign reports whether the transaction currency differs from home.
func (t Transaction) IsForeign(homeCurrency string) bool {
	return t.CurrencyCode != homeCurrency
}

// LineItem belongs to exactly one Transaction.
type LineItem struct {
	LineItemID    string          `json:"lineItemID"`
	TransactionID string          `json:"transactionID"`
	LineNo        int             `json:"lineNo"`
	Description   string          `json:"description" validate:"max=500"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Amount        decimal.Decimal `json:"amount"` // round(quantity * unitPrice, 2)
	// SuppliedAmount is the caller's amount, if any; posting checks it and clears it.
	SuppliedAmount *decimal.Decimal `json:"-"`
	AccountID     string          `json:"accountID"`
	SalesTaxID    *string         `json:"salesTaxID,omitempty"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	Side          Side            `json:"side,omitempty"` // journal entries only
}

// TransactionDetail bundles a transaction with everything posted for it.
type TransactionDetail struct {
	Transaction
	EffectiveStatus TransactionStatus `json:"effectiveStatus"`
	LineItems       []LineItem        `json:"lineItems"`
	Entries         []LedgerEntry     `json:"entries"`
}
