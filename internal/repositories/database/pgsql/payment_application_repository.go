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

type PgxPaymentApplicationRepository struct {
	pool *pgxpool.Pool
}

func newPgxPaymentApplicationRepository(pool *pgxpool.Pool) *PgxPaymentApplicationRepository {
	return &PgxPaymentApplicationRepository{pool: pool}
}

var _ portsrepo.PaymentApplicationRepositoryFacade = (*PgxPaymentApplicationRepository)(nil)

const paymentApplicationColumns = `pa.application_id, pa.payment_transaction_id, pa.target_transaction_id, pa.amount_applied,
		pa.reversed_at, pa.created_at, pa.created_by, pa.last_updated_at, pa.last_updated_by`

func paymentApplicationDest(m *models.PaymentApplication) []any {
	return []any{
		&m.ApplicationID,
		&m.PaymentTransactionID,
		&m.TargetTransactionID,
		&m.AmountApplied,
		&m.ReversedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	}
}

// InsertApplicationInTx stores a new application.
func (r *PgxPaymentApplicationRepository) InsertApplicationInTx(ctx context.Context, tx pgx.Tx, app domain.PaymentApplication) error {
	m := mapping.ToModelPaymentApplication(app)
	query := `
		INSERT INTO payment_applications (application_id, payment_transaction_id, target_transaction_id, amount_applied,
			reversed_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		m.ApplicationID,
		m.PaymentTransactionID,
		m.TargetTransactionID,
		m.AmountApplied,
		m.ReversedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapPgError(err, "payment application", m.ApplicationID); mapped != err {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to insert payment application", err)
	}
	return nil
}

func (r *PgxPaymentApplicationRepository) findActiveInTx(ctx context.Context, tx pgx.Tx, column, transactionID string) ([]domain.PaymentApplication, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM payment_applications pa
		WHERE pa.%s = $1 AND pa.reversed_at IS NULL
		ORDER BY pa.created_at, pa.application_id;
	`, paymentApplicationColumns, column)

	rows, err := tx.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payment applications of "+transactionID, err)
	}
	defer rows.Close()

	apps := []domain.PaymentApplication{}
	for rows.Next() {
		var m models.PaymentApplication
		if err := rows.Scan(paymentApplicationDest(&m)...); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment application", err)
		}
		apps = append(apps, mapping.ToDomainPaymentApplication(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payment applications", err)
	}
	return apps, nil
}

// FindActiveApplicationsByPaymentInTx lists non-reversed applications made by a payment.
func (r *PgxPaymentApplicationRepository) FindActiveApplicationsByPaymentInTx(ctx context.Context, tx pgx.Tx, paymentTransactionID string) ([]domain.PaymentApplication, error) {
	return r.findActiveInTx(ctx, tx, "payment_transaction_id", paymentTransactionID)
}

// FindActiveApplicationsByTargetInTx lists non-reversed applications settling a target.
func (r *PgxPaymentApplicationRepository) FindActiveApplicationsByTargetInTx(ctx context.Context, tx pgx.Tx, targetTransactionID string) ([]domain.PaymentApplication, error) {
	return r.findActiveInTx(ctx, tx, "target_transaction_id", targetTransactionID)
}

// MarkApplicationsReversedInTx soft-reverses applications; already reversed rows are left alone.
func (r *PgxPaymentApplicationRepository) MarkApplicationsReversedInTx(ctx context.Context, tx pgx.Tx, applicationIDs []string, userID string, now time.Time) error {
	if len(applicationIDs) == 0 {
		return nil
	}
	query := `
		UPDATE payment_applications
		SET reversed_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE application_id = ANY($1) AND reversed_at IS NULL;
	`
	if _, err := tx.Exec(ctx, query, applicationIDs, now, userID); err != nil {
		return apperrors.NewAppError(500, "failed to reverse payment applications", err)
	}
	return nil
}

func (r *PgxPaymentApplicationRepository) sumActiveInTx(ctx context.Context, tx pgx.Tx, column, transactionID string) (decimal.Decimal, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(amount_applied), 0)
		FROM payment_applications
		WHERE %s = $1 AND reversed_at IS NULL;
	`, column)
	var total decimal.Decimal
	if err := tx.QueryRow(ctx, query, transactionID).Scan(&total); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum payment applications of "+transactionID, err)
	}
	return total, nil
}

// SumAppliedToTargetInTx totals non-reversed amounts applied to a target.
func (r *PgxPaymentApplicationRepository) SumAppliedToTargetInTx(ctx context.Context, tx pgx.Tx, targetTransactionID string) (decimal.Decimal, error) {
	return r.sumActiveInTx(ctx, tx, "target_transaction_id", targetTransactionID)
}

// SumAppliedFromPaymentInTx totals non-reversed amounts applied from a payment.
func (r *PgxPaymentApplicationRepository) SumAppliedFromPaymentInTx(ctx context.Context, tx pgx.Tx, paymentTransactionID string) (decimal.Decimal, error) {
	return r.sumActiveInTx(ctx, tx, "payment_transaction_id", paymentTransactionID)
}

// ListPaymentHistory returns applications targeting a transaction, oldest first, with payment metadata.
func (r *PgxPaymentApplicationRepository) ListPaymentHistory(ctx context.Context, targetTransactionID string, includeReversed bool) ([]domain.PaymentHistoryItem, error) {
	query := `
		SELECT ` + paymentApplicationColumns + `, t.transaction_type, t.transaction_date, t.reference
		FROM payment_applications pa
		JOIN transactions t ON t.transaction_id = pa.payment_transaction_id
		WHERE pa.target_transaction_id = $1 AND ($2::boolean OR pa.reversed_at IS NULL)
		ORDER BY t.transaction_date, pa.created_at, pa.application_id;
	`
	rows, err := r.pool.Query(ctx, query, targetTransactionID, includeReversed)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payment history of "+targetTransactionID, err)
	}
	defer rows.Close()

	items := []domain.PaymentHistoryItem{}
	for rows.Next() {
		var m models.PaymentHistoryItem
		dest := append(paymentApplicationDest(&m.PaymentApplication), &m.PaymentType, &m.PaymentDate, &m.PaymentReference)
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment history row", err)
		}
		items = append(items, mapping.ToDomainPaymentHistoryItem(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payment history", err)
	}
	return items, nil
}
