package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_core/internal/models"
	"github.com/SscSPs/bookkeeping_core/internal/utils/mapping"
	"github.com/SscSPs/bookkeeping_core/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, transaction_type, transaction_date, due_date, reference, contact_id,
		contact_type, account_id, currency_code, exchange_rate, amount, home_amount, status, balance, version,
		created_at, created_by, last_updated_at, last_updated_by`

const lineItemColumns = `line_item_id, transaction_id, line_no, description, quantity, unit_price, amount,
		account_id, sales_tax_id, tax_amount, side`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.TransactionType,
		&m.TransactionDate,
		&m.DueDate,
		&m.Reference,
		&m.ContactID,
		&m.ContactType,
		&m.AccountID,
		&m.CurrencyCode,
		&m.ExchangeRate,
		&m.Amount,
		&m.HomeAmount,
		&m.Status,
		&m.Balance,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func transactionArgs(m models.Transaction) []interface{} {
	return []interface{}{
		m.TransactionID,
		m.TransactionType,
		m.TransactionDate,
		m.DueDate,
		m.Reference,
		m.ContactID,
		m.ContactType,
		m.AccountID,
		m.CurrencyCode,
		m.ExchangeRate,
		m.Amount,
		m.HomeAmount,
		m.Status,
		m.Balance,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

// FindTransactionByID retrieves a transaction header.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if mapped := mapPgError(err, "transaction", transactionID); mapped != err {
			return nil, mapped
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction "+transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// FindLineItemsByTransactionID retrieves the line items of a transaction in line order.
func (r *PgxTransactionRepository) FindLineItemsByTransactionID(ctx context.Context, transactionID string) ([]domain.LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM line_items WHERE transaction_id = $1 ORDER BY line_no;`

	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query line items for transaction "+transactionID, err)
	}
	defer rows.Close()

	lines := []domain.LineItem{}
	for rows.Next() {
		var m models.LineItem
		if err := rows.Scan(
			&m.LineItemID,
			&m.TransactionID,
			&m.LineNo,
			&m.Description,
			&m.Quantity,
			&m.UnitPrice,
			&m.Amount,
			&m.AccountID,
			&m.SalesTaxID,
			&m.TaxAmount,
			&m.Side,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line item for transaction "+transactionID, err)
		}
		lines = append(lines, mapping.ToDomainLineItem(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line items for transaction "+transactionID, err)
	}
	return lines, nil
}

// ListTransactions retrieves a page of transactions, newest first, using token-based pagination.
// It returns the page and a token for the next page (if any).
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.ListTransactionsFilter) ([]domain.Transaction, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	where := []string{"1=1"}
	args := []interface{}{}
	next := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Type != nil {
		where = append(where, "transaction_type = "+next(string(*filter.Type)))
	}
	if filter.Status != nil {
		if *filter.Status == domain.StatusOverdue {
			// Overdue is derived: pending with a due date before today.
			where = append(where, "status = 'pending' AND due_date < "+next(domain.DateOnly(time.Now())))
		} else {
			where = append(where, "status = "+next(string(*filter.Status)))
		}
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		cursor, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewFieldValidationError("nextToken", err.Error())
		}
		// Tuple comparison keeps the ordering stable across pages.
		where = append(where, fmt.Sprintf("(transaction_date, created_at, transaction_id) < (%s, %s, %s)",
			next(domain.DateOnly(cursor.Date)), next(cursor.CreatedAt), next(cursor.ID)))
	}

	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY transaction_date DESC, created_at DESC, transaction_id DESC
		LIMIT ` + next(fetchLimit) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	defer rows.Close()

	results := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}

	var nextTokenVal *string
	if len(results) > limit {
		// The token points to the last item included in this page.
		last := results[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
		results = results[:limit]
	}

	return mapping.ToDomainTransactionSlice(results), nextTokenVal, nil
}

// ListOpenTransactionIDs returns invoices and bills that are pending or paid.
func (r *PgxTransactionRepository) ListOpenTransactionIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT transaction_id
		FROM transactions
		WHERE transaction_type IN ('invoice', 'bill') AND status IN ('pending', 'paid')
		ORDER BY transaction_id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query open transactions", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan open transaction id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating open transactions", err)
	}
	return ids, nil
}

// CountTransactionsUsingRate counts non-draft transactions in pair.From dated on date.
func (r *PgxTransactionRepository) CountTransactionsUsingRate(ctx context.Context, pair domain.CurrencyPair, date time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE currency_code = $1 AND transaction_date = $2 AND status <> 'draft';
	`
	var count int
	if err := r.Pool.QueryRow(ctx, query, pair.From, domain.DateOnly(date)).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count transactions using rate "+pair.String(), err)
	}
	return count, nil
}

// FindTransactionByIDForUpdate locks a transaction row with NOWAIT.
func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE NOWAIT;`

	m, err := scanTransaction(tx.QueryRow(ctx, query, transactionID))
	if err != nil {
		if mapped := mapPgError(err, "transaction", transactionID); mapped != err {
			return nil, mapped
		}
		return nil, apperrors.NewAppError(500, "failed to lock transaction "+transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// FindTransactionsByIDsForUpdate locks several rows in ascending id order with NOWAIT.
// Missing IDs are absent from the map.
func (r *PgxTransactionRepository) FindTransactionsByIDsForUpdate(ctx context.Context, tx pgx.Tx, transactionIDs []string) (map[string]domain.Transaction, error) {
	if len(transactionIDs) == 0 {
		return map[string]domain.Transaction{}, nil
	}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_id = ANY($1)
		ORDER BY transaction_id
		FOR UPDATE NOWAIT;
	`
	ids := strings.Join(transactionIDs, ",")
	rows, err := tx.Query(ctx, query, transactionIDs)
	if err != nil {
		if mapped := mapPgError(err, "transaction", ids); mapped != err {
			return nil, mapped
		}
		return nil, apperrors.NewAppError(500, "failed to lock transactions "+ids, err)
	}
	defer rows.Close()

	out := make(map[string]domain.Transaction, len(transactionIDs))
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan locked transaction", err)
		}
		out[m.TransactionID] = mapping.ToDomainTransaction(m)
	}
	if err := rows.Err(); err != nil {
		// A held lock can surface while rows are streamed.
		if mapped := mapPgError(err, "transaction", ids); mapped != err {
			return nil, mapped
		}
		return nil, apperrors.NewAppError(500, "error iterating locked transactions", err)
	}
	return out, nil
}

// InsertTransactionInTx stores a new header and its line items.
func (r *PgxTransactionRepository) InsertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, lines []domain.LineItem) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	if _, err := tx.Exec(ctx, query, transactionArgs(m)...); err != nil {
		if mapped := mapPgError(err, "transaction", m.TransactionID); mapped != err {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to insert transaction "+m.TransactionID, err)
	}
	return r.insertLineItems(ctx, tx, m.TransactionID, lines)
}

// ReplaceTransactionInTx overwrites a header, including its version, and replaces its line items.
func (r *PgxTransactionRepository) ReplaceTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, lines []domain.LineItem) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		UPDATE transactions
		SET transaction_type = $2, transaction_date = $3, due_date = $4, reference = $5, contact_id = $6,
		    contact_type = $7, account_id = $8, currency_code = $9, exchange_rate = $10, amount = $11,
		    home_amount = $12, status = $13, balance = $14, version = $15,
		    last_updated_at = $16, last_updated_by = $17
		WHERE transaction_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.TransactionType,
		m.TransactionDate,
		m.DueDate,
		m.Reference,
		m.ContactID,
		m.ContactType,
		m.AccountID,
		m.CurrencyCode,
		m.ExchangeRate,
		m.Amount,
		m.HomeAmount,
		m.Status,
		m.Balance,
		m.Version,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapPgError(err, "transaction", m.TransactionID); mapped != err {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to update transaction "+m.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("transaction " + m.TransactionID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE transaction_id = $1;`, m.TransactionID); err != nil {
		return apperrors.NewAppError(500, "failed to delete line items of "+m.TransactionID, err)
	}
	return r.insertLineItems(ctx, tx, m.TransactionID, lines)
}

func (r *PgxTransactionRepository) insertLineItems(ctx context.Context, tx pgx.Tx, transactionID string, lines []domain.LineItem) error {
	if len(lines) == 0 {
		return nil
	}
	query := `INSERT INTO line_items (` + lineItemColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`

	batch := &pgx.Batch{}
	for _, line := range lines {
		lm := mapping.ToModelLineItem(line)
		lm.TransactionID = transactionID
		batch.Queue(query,
			lm.LineItemID,
			lm.TransactionID,
			lm.LineNo,
			lm.Description,
			lm.Quantity,
			lm.UnitPrice,
			lm.Amount,
			lm.AccountID,
			lm.SalesTaxID,
			lm.TaxAmount,
			lm.Side,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		if mapped := mapPgError(err, "line item", transactionID); mapped != err {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to execute line item batch for transaction "+transactionID, err)
	}
	return nil
}

// UpdateSettlementInTx stores a new cached balance and status.
func (r *PgxTransactionRepository) UpdateSettlementInTx(ctx context.Context, tx pgx.Tx, transactionID string, balance decimal.Decimal, status domain.TransactionStatus, userID string, now time.Time) error {
	query := `
		UPDATE transactions
		SET balance = $2, status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, transactionID, balance, string(status), now, userID)
	if err != nil {
		if mapped := mapPgError(err, "transaction", transactionID); mapped != err {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to update settlement of "+transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("transaction " + transactionID)
	}
	return nil
}

// MarkCancelledInTx sets a header to cancelled with a zero balance and stores version.
func (r *PgxTransactionRepository) MarkCancelledInTx(ctx context.Context, tx pgx.Tx, transactionID string, version int, userID string, now time.Time) error {
	query := `
		UPDATE transactions
		SET status = $2, balance = 0, version = $3, last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, transactionID, string(domain.StatusCancelled), version, now, userID)
	if err != nil {
		if mapped := mapPgError(err, "transaction", transactionID); mapped != err {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to cancel transaction "+transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("transaction " + transactionID)
	}
	return nil
}

// DeleteTransactionInTx removes a header; line items and payment applications cascade.
func (r *PgxTransactionRepository) DeleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		if mapped := mapPgError(err, "transaction", transactionID); mapped != err {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to delete transaction "+transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("transaction " + transactionID)
	}
	return nil
}
