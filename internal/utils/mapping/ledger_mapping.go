package mapping

import (
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/SscSPs/bookkeeping_core/internal/models"
)

// ToModelLedgerEntry converts a domain LedgerEntry.
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:       d.EntryID,
		TransactionID: d.TransactionID,
		AccountID:     d.AccountID,
		EntryDate:     domain.DateOnly(d.Date),
		Description:   d.Description,
		Debit:         d.Debit,
		Credit:        d.Credit,
		CreatedAt:     d.CreatedAt,
	}
}

// ToDomainLedgerEntry converts a model LedgerEntry.
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:       m.EntryID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Date:          domain.DateOnly(m.EntryDate),
		Description:   m.Description,
		Debit:         m.Debit,
		Credit:        m.Credit,
		CreatedAt:     m.CreatedAt,
	}
}

// ToModelPaymentApplication converts a domain PaymentApplication.
func ToModelPaymentApplication(d domain.PaymentApplication) models.PaymentApplication {
	return models.PaymentApplication{
		ApplicationID:        d.ApplicationID,
		PaymentTransactionID: d.PaymentTransactionID,
		TargetTransactionID:  d.TargetTransactionID,
		AmountApplied:        d.AmountApplied,
		ReversedAt:           d.ReversedAt,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPaymentApplication converts a model PaymentApplication.
func ToDomainPaymentApplication(m models.PaymentApplication) domain.PaymentApplication {
	return domain.PaymentApplication{
		ApplicationID:        m.ApplicationID,
		PaymentTransactionID: m.PaymentTransactionID,
		TargetTransactionID:  m.TargetTransactionID,
		AmountApplied:        m.AmountApplied,
		ReversedAt:           m.ReversedAt,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPaymentHistoryItem converts a joined history row.
func ToDomainPaymentHistoryItem(m models.PaymentHistoryItem) domain.PaymentHistoryItem {
	return domain.PaymentHistoryItem{
		PaymentApplication: ToDomainPaymentApplication(m.PaymentApplication),
		PaymentType:        domain.TransactionType(m.PaymentType),
		PaymentDate:        domain.DateOnly(m.PaymentDate),
		PaymentReference:   m.PaymentReference,
	}
}

// ToModelSalesTax converts a domain SalesTax.
func ToModelSalesTax(d domain.SalesTax) models.SalesTax {
	return models.SalesTax{
		SalesTaxID:  d.SalesTaxID,
		Name:        d.Name,
		Rate:        d.Rate,
		AccountID:   d.AccountID,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSalesTax converts a model SalesTax.
func ToDomainSalesTax(m models.SalesTax) domain.SalesTax {
	return domain.SalesTax{
		SalesTaxID:  m.SalesTaxID,
		Name:        m.Name,
		Rate:        m.Rate,
		AccountID:   m.AccountID,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
