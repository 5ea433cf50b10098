package mapping

import (
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/SscSPs/bookkeeping_core/internal/models"
)

// ToModelTransaction converts a domain Transaction header to its model.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	var dueDate = d.DueDate
	if dueDate != nil {
		day := domain.DateOnly(*dueDate)
		dueDate = &day
	}
	return models.Transaction{
		TransactionID:   d.TransactionID,
		TransactionType: string(d.Type),
		TransactionDate: domain.DateOnly(d.Date),
		DueDate:         dueDate,
		Reference:       d.Reference,
		ContactID:       d.ContactID,
		ContactType:     nullableString(string(d.ContactType)),
		AccountID:       nullableString(d.AccountID),
		CurrencyCode:    d.CurrencyCode,
		ExchangeRate:    d.ExchangeRate,
		Amount:          d.Amount,
		HomeAmount:      d.HomeAmount,
		Status:          string(d.Status),
		Balance:         d.Balance,
		Version:         d.Version,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID: m.TransactionID,
		Type:          domain.TransactionType(m.TransactionType),
		Date:          domain.DateOnly(m.TransactionDate),
		DueDate:       m.DueDate,
		Reference:     m.Reference,
		ContactID:     m.ContactID,
		ContactType:   domain.ContactType(stringOrEmpty(m.ContactType)),
		AccountID:     stringOrEmpty(m.AccountID),
		CurrencyCode:  m.CurrencyCode,
		ExchangeRate:  m.ExchangeRate,
		Amount:        m.Amount,
		HomeAmount:    m.HomeAmount,
		Status:        domain.TransactionStatus(m.Status),
		Balance:       m.Balance,
		Version:       m.Version,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions.
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

// ToModelLineItem converts a domain LineItem.
func ToModelLineItem(d domain.LineItem) models.LineItem {
	return models.LineItem{
		LineItemID:    d.LineItemID,
		TransactionID: d.TransactionID,
		LineNo:        d.LineNo,
		Description:   d.Description,
		Quantity:      d.Quantity,
		UnitPrice:     d.UnitPrice,
		Amount:        d.Amount,
		AccountID:     nullableString(d.AccountID),
		SalesTaxID:    d.SalesTaxID,
		TaxAmount:     d.TaxAmount,
		Side:          nullableString(string(d.Side)),
	}
}

// ToDomainLineItem converts a model LineItem.
func ToDomainLineItem(m models.LineItem) domain.LineItem {
	return domain.LineItem{
		LineItemID:    m.LineItemID,
		TransactionID: m.TransactionID,
		LineNo:        m.LineNo,
		Description:   m.Description,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		Amount:        m.Amount,
		AccountID:     stringOrEmpty(m.AccountID),
		SalesTaxID:    m.SalesTaxID,
		TaxAmount:     m.TaxAmount,
		Side:          domain.Side(stringOrEmpty(m.Side)),
	}
}
