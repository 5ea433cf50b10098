package services

import (
	"context"
	"io"
)

// BankImportRequest classifies every imported row to one bank account and one offset account.
type BankImportRequest struct {
	Format          string // parser name; empty means the generic date,description,amount,reference layout
	BankAccountID   string
	OffsetAccountID string
	CurrencyCode    string
}

// BankImportResult lists the draft transactions created by an import.
type BankImportResult struct {
	TransactionIDs []string
	Skipped        int
}

// BankImportSvc turns a bank CSV statement into draft transactions.
type BankImportSvc interface {
	ImportCSV(ctx context.Context, r io.Reader, req BankImportRequest, userID string) (*BankImportResult, error)
}
