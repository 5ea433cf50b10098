package services

import (
	"fmt"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
)

// headerLeg says where the total of a transaction is posted.
type headerLeg int

const (
	// headerNone posts no total; every line carries its own side.
	headerNone headerLeg = iota
	// headerControl posts the total to the receivable or payable control account.
	headerControl
	// headerAccount posts the total to the transaction's own bank, card or source account.
	headerAccount
)

// postingTemplate is the fixed debit/credit shape of one transaction type.
type postingTemplate struct {
	header      headerLeg
	control     domain.AccountType // header account type when header == headerControl
	headerSide  domain.Side
	lineSide    domain.Side
	lineDefault domain.AccountType // control account used by lines without an account
}

// templateFor returns the posting template of a transaction. Every TransactionType has
// exactly one case; an unknown type is rejected rather than defaulted.
func templateFor(txn domain.Transaction) (postingTemplate, error) {
	switch txn.Type {
	case domain.Invoice:
		return postingTemplate{header: headerControl, control: domain.AccountsReceivable, headerSide: domain.Debit, lineSide: domain.Credit}, nil
	case domain.Bill:
		return postingTemplate{header: headerControl, control: domain.AccountsPayable, headerSide: domain.Credit, lineSide: domain.Debit}, nil
	case domain.ExpenseTxn, domain.Cheque:
		return postingTemplate{header: headerAccount, headerSide: domain.Credit, lineSide: domain.Debit}, nil
	case domain.Transfer:
		// header is the "from" account, lines are the "to" accounts
		return postingTemplate{header: headerAccount, headerSide: domain.Credit, lineSide: domain.Debit}, nil
	case domain.Deposit, domain.SalesReceipt:
		return postingTemplate{header: headerAccount, headerSide: domain.Debit, lineSide: domain.Credit}, nil
	case domain.Payment:
		switch txn.ContactType {
		case domain.Customer:
			return postingTemplate{header: headerAccount, headerSide: domain.Debit, lineSide: domain.Credit, lineDefault: domain.AccountsReceivable}, nil
		case domain.Vendor:
			return postingTemplate{header: headerAccount, headerSide: domain.Credit, lineSide: domain.Debit, lineDefault: domain.AccountsPayable}, nil
		default:
			return postingTemplate{}, apperrors.NewFieldValidationError("contactType", "a payment requires contactType customer or vendor")
		}
	case domain.CustomerCredit:
		return postingTemplate{header: headerControl, control: domain.AccountsReceivable, headerSide: domain.Credit, lineSide: domain.Debit}, nil
	case domain.VendorCredit:
		return postingTemplate{header: headerControl, control: domain.AccountsPayable, headerSide: domain.Debit, lineSide: domain.Credit}, nil
	case domain.JournalEntry:
		return postingTemplate{header: headerNone}, nil
	default:
		return postingTemplate{}, apperrors.NewFieldValidationError("type", fmt.Sprintf("unknown transaction type '%s'", txn.Type))
	}
}
