package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_core/internal/models"
	"github.com/SscSPs/bookkeeping_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxLedgerRepository stores ledger entries. Entries are append/remove only.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const ledgerEntryColumns = `entry_id, transaction_id, account_id, entry_date, description, debit, credit, created_at`

func collectLedgerEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	defer rows.Close()
	entries := []domain.LedgerEntry{}
	for rows.Next() {
		var m models.LedgerEntry
		if err := rows.Scan(
			&m.EntryID,
			&m.TransactionID,
			&m.AccountID,
			&m.EntryDate,
			&m.Description,
			&m.Debit,
			&m.Credit,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, mapping.ToDomainLedgerEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}
	return entries, nil
}

// InsertEntriesInTx appends entries in one batch.
func (r *PgxLedgerRepository) InsertEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `INSERT INTO ledger_entries (` + ledgerEntryColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	batch := &pgx.Batch{}
	for _, e := range entries {
		m := mapping.ToModelLedgerEntry(e)
		batch.Queue(query,
			m.EntryID,
			m.TransactionID,
			m.AccountID,
			m.EntryDate,
			m.Description,
			m.Debit,
			m.Credit,
			m.CreatedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		if mapped := mapPgError(err, "ledger entry", entries[0].TransactionID); mapped != err {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to execute ledger entry batch for transaction "+entries[0].TransactionID, err)
	}
	return nil
}

// DeleteEntriesByTransactionInTx removes every entry of a transaction and returns the removed rows.
func (r *PgxLedgerRepository) DeleteEntriesByTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) ([]domain.LedgerEntry, error) {
	query := `DELETE FROM ledger_entries WHERE transaction_id = $1 RETURNING ` + ledgerEntryColumns + `;`
	rows, err := tx.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete ledger entries of "+transactionID, err)
	}
	return collectLedgerEntries(rows)
}

// FindEntriesByTransactionID retrieves the entries posted for a transaction.
func (r *PgxLedgerRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE transaction_id = $1 ORDER BY created_at, entry_id;`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query ledger entries of "+transactionID, err)
	}
	return collectLedgerEntries(rows)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func sumAccountEntries(ctx context.Context, q querier, accountID string, asOf *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
		FROM ledger_entries
		WHERE account_id = $1 AND ($2::date IS NULL OR entry_date <= $2::date);
	`
	var asOfArg *time.Time
	if asOf != nil {
		day := domain.DateOnly(*asOf)
		asOfArg = &day
	}
	var debits, credits decimal.Decimal
	if err := q.QueryRow(ctx, query, accountID, asOfArg).Scan(&debits, &credits); err != nil {
		return decimal.Zero, decimal.Zero, apperrors.NewAppError(500, "failed to sum ledger entries of account "+accountID, err)
	}
	return debits, credits, nil
}

// SumAccountEntries totals debits and credits for an account up to an optional as-of date.
func (r *PgxLedgerRepository) SumAccountEntries(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	return sumAccountEntries(ctx, r.Pool, accountID, asOf)
}

// SumAccountEntriesInTx totals an account's entries as seen by tx.
func (r *PgxLedgerRepository) SumAccountEntriesInTx(ctx context.Context, tx pgx.Tx, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	return sumAccountEntries(ctx, tx, accountID, nil)
}

// TrialBalanceRows totals debits and credits per account with at least one entry, ordered by code.
func (r *PgxLedgerRepository) TrialBalanceRows(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type,
		       COALESCE(SUM(e.debit), 0), COALESCE(SUM(e.credit), 0)
		FROM ledger_entries e
		JOIN accounts a ON a.account_id = e.account_id
		WHERE ($1::date IS NULL OR e.entry_date <= $1::date)
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	var asOfArg *time.Time
	if asOf != nil {
		day := domain.DateOnly(*asOf)
		asOfArg = &day
	}
	rows, err := r.Pool.Query(ctx, query, asOfArg)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query trial balance", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		var accountType string
		if err := rows.Scan(&row.AccountID, &row.AccountCode, &row.AccountName, &accountType, &row.Debit, &row.Credit); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan trial balance row", err)
		}
		row.AccountType = domain.AccountType(accountType)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating trial balance rows", err)
	}
	return result, nil
}
