package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/dto"
	"github.com/SscSPs/bookkeeping_core/internal/importer"
	"github.com/shopspring/decimal"
)

type bankImportService struct {
	BaseService
	parsers      *importer.Registry
	transactions portssvc.TransactionWriterSvc
}

// NewBankImportService creates the bank import service. Imported rows are created as drafts
// through the regular transaction path.
func NewBankImportService(parsers *importer.Registry, transactions portssvc.TransactionWriterSvc) portssvc.BankImportSvc {
	if parsers == nil {
		parsers = importer.DefaultRegistry()
	}
	return &bankImportService{parsers: parsers, transactions: transactions}
}

// ImportCSV turns money in into deposits and money out into expenses against the bank account,
// classified to the offset account. Zero rows are skipped.
func (s *bankImportService) ImportCSV(ctx context.Context, r io.Reader, req portssvc.BankImportRequest, userID string) (*portssvc.BankImportResult, error) {
	if req.BankAccountID == "" || req.OffsetAccountID == "" {
		return nil, apperrors.NewValidationError("bank and offset accounts are required")
	}
	format := req.Format
	if format == "" {
		format = "generic"
	}
	parser := s.parsers.Get(format)
	if parser == nil {
		return nil, apperrors.NewFieldValidationError("format", fmt.Sprintf("unknown import format '%s'", format))
	}

	rows, err := parser.Parse(r)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	result := &portssvc.BankImportResult{}
	for i, row := range rows {
		if row.Amount.IsZero() {
			result.Skipped++
			continue
		}
		txnType := domain.Deposit
		if row.Amount.IsNegative() {
			txnType = domain.ExpenseTxn
		}
		create := dto.CreateTransactionRequest{
			Type: txnType,
			TransactionFields: dto.TransactionFields{
				Date:         row.Date,
				Reference:    row.Reference,
				AccountID:    req.BankAccountID,
				CurrencyCode: req.CurrencyCode,
				Draft:        true,
				LineItems: []dto.LineItemRequest{{
					Description: row.Description,
					Quantity:    decimal.NewFromInt(1),
					UnitPrice:   row.Amount.Abs(),
					AccountID:   req.OffsetAccountID,
				}},
			},
		}
		created, err := s.transactions.CreateTransaction(ctx, create, userID)
		if err != nil {
			s.LogError(ctx, err, "Failed to import bank row", slog.Int("row", i+1), slog.String("reference", row.Reference))
			return result, fmt.Errorf("row %d (%s): %w", i+1, row.Reference, err)
		}
		result.TransactionIDs = append(result.TransactionIDs, created.TransactionID)
	}

	s.LogInfo(ctx, "Bank statement imported",
		slog.String("format", format),
		slog.Int("created", len(result.TransactionIDs)),
		slog.Int("skipped", result.Skipped))
	return result, nil
}
