package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_core/internal/models"
	"github.com/SscSPs/bookkeeping_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExchangeRateRepository implements the exchange rate ports using pgxpool.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func newPgxExchangeRateRepository(db *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

const exchangeRateColumns = `exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective, is_manual,
			created_at, created_by, last_updated_at, last_updated_by`

func scanExchangeRate(row pgx.Row) (models.ExchangeRate, error) {
	var m models.ExchangeRate
	err := row.Scan(
		&m.ExchangeRateID, &m.FromCurrencyCode, &m.ToCurrencyCode,
		&m.Rate, &m.DateEffective, &m.IsManual, &m.CreatedAt,
		&m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// UpsertExchangeRate inserts the rate or overwrites the row with the same pair, date and kind.
// A manual row and an automatic row on the same date are distinct rows.
func (r *PgxExchangeRateRepository) UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) (*domain.ExchangeRate, error) {
	modelRate := mapping.ToModelExchangeRate(rate)
	modelRate.FromCurrencyCode = strings.ToUpper(modelRate.FromCurrencyCode)
	modelRate.ToCurrencyCode = strings.ToUpper(modelRate.ToCurrencyCode)

	if modelRate.FromCurrencyCode == modelRate.ToCurrencyCode {
		return nil, apperrors.NewValidationError("from and to currencies cannot be the same")
	}

	query := `
		INSERT INTO exchange_rates (` + exchangeRateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (from_currency_code, to_currency_code, date_effective, is_manual) DO UPDATE
		SET rate = EXCLUDED.rate,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by
		RETURNING ` + exchangeRateColumns + `;
	`
	stored, err := scanExchangeRate(r.Pool.QueryRow(ctx, query,
		modelRate.ExchangeRateID, modelRate.FromCurrencyCode, modelRate.ToCurrencyCode,
		modelRate.Rate, modelRate.DateEffective, modelRate.IsManual, modelRate.CreatedAt,
		modelRate.CreatedBy, modelRate.LastUpdatedAt, modelRate.LastUpdatedBy,
	))
	if err != nil {
		pair := modelRate.FromCurrencyCode + "->" + modelRate.ToCurrencyCode
		if mapped := mapPgError(err, "exchange rate", pair); mapped != err {
			return nil, mapped
		}
		return nil, apperrors.NewAppError(500, "failed to save exchange rate", err)
	}

	domainRate := mapping.ToDomainExchangeRate(stored)
	return &domainRate, nil
}

// FindEffectiveRate returns the newest row on or before date; on a tie the manual row wins.
// The ordering matches domain.ExchangeRate.Supersedes.
func (r *PgxExchangeRateRepository) FindEffectiveRate(ctx context.Context, pair domain.CurrencyPair, date time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND date_effective <= $3
		ORDER BY date_effective DESC, is_manual DESC
		LIMIT 1;
	`
	modelRate, err := scanExchangeRate(r.Pool.QueryRow(ctx, query, pair.From, pair.To, domain.DateOnly(date)))
	if err != nil {
		if mapped := mapPgError(err, "exchange rate", pair.String()); mapped != err {
			return nil, mapped
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}

	domainRate := mapping.ToDomainExchangeRate(modelRate)
	return &domainRate, nil
}

// ListExchangeRates retrieves stored rates with optional filtering, newest first.
func (r *PgxExchangeRateRepository) ListExchangeRates(
	ctx context.Context,
	fromCurrency, toCurrency *string,
	effectiveDate *time.Time,
	page, pageSize int,
) ([]domain.ExchangeRate, int, error) {
	baseQuery := `FROM exchange_rates WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if fromCurrency != nil {
		baseQuery += fmt.Sprintf(" AND from_currency_code = $%d", argNum)
		args = append(args, strings.ToUpper(*fromCurrency))
		argNum++
	}
	if toCurrency != nil {
		baseQuery += fmt.Sprintf(" AND to_currency_code = $%d", argNum)
		args = append(args, strings.ToUpper(*toCurrency))
		argNum++
	}
	if effectiveDate != nil {
		baseQuery += fmt.Sprintf(" AND date_effective <= $%d", argNum)
		args = append(args, domain.DateOnly(*effectiveDate))
		argNum++
	}

	var total int
	if err := r.Pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to count exchange rates", err)
	}
	if total == 0 {
		return []domain.ExchangeRate{}, 0, nil
	}

	baseQuery += " ORDER BY date_effective DESC, from_currency_code, to_currency_code, is_manual DESC"
	if pageSize > 0 {
		offset := (page - 1) * pageSize
		baseQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
		args = append(args, pageSize, offset)
	}

	rows, err := r.Pool.Query(ctx, "SELECT "+exchangeRateColumns+" "+baseQuery, args...)
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to list exchange rates", err)
	}
	defer rows.Close()

	var modelRates []models.ExchangeRate
	for rows.Next() {
		modelRate, err := scanExchangeRate(rows)
		if err != nil {
			return nil, 0, apperrors.NewAppError(500, "failed to scan exchange rate", err)
		}
		modelRates = append(modelRates, modelRate)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewAppError(500, "error iterating exchange rates", err)
	}

	return mapping.ToDomainExchangeRateSlice(modelRates), total, nil
}
