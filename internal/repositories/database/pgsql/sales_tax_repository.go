package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_core/internal/models"
	"github.com/SscSPs/bookkeeping_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSalesTaxRepository struct {
	pool *pgxpool.Pool
}

func newPgxSalesTaxRepository(pool *pgxpool.Pool) *PgxSalesTaxRepository {
	return &PgxSalesTaxRepository{pool: pool}
}

var _ portsrepo.SalesTaxRepositoryFacade = (*PgxSalesTaxRepository)(nil)

const salesTaxColumns = `sales_tax_id, name, rate, account_id, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanSalesTax(row pgx.Row) (models.SalesTax, error) {
	var m models.SalesTax
	err := row.Scan(&m.SalesTaxID, &m.Name, &m.Rate, &m.AccountID, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return m, err
}

// FindSalesTaxesByIDs retrieves sales taxes keyed by ID. Unknown IDs are absent from the map.
func (r *PgxSalesTaxRepository) FindSalesTaxesByIDs(ctx context.Context, salesTaxIDs []string) (map[string]domain.SalesTax, error) {
	if len(salesTaxIDs) == 0 {
		return map[string]domain.SalesTax{}, nil
	}
	query := `SELECT ` + salesTaxColumns + ` FROM sales_taxes WHERE sales_tax_id = ANY($1);`
	rows, err := r.pool.Query(ctx, query, salesTaxIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales taxes: %w", err)
	}
	defer rows.Close()

	taxes := make(map[string]domain.SalesTax)
	for rows.Next() {
		m, err := scanSalesTax(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales tax row: %w", err)
		}
		taxes[m.SalesTaxID] = mapping.ToDomainSalesTax(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales tax rows: %w", err)
	}
	return taxes, nil
}

// UpsertSalesTaxByName inserts a tax or updates rate, account and activity of the one sharing its name.
func (r *PgxSalesTaxRepository) UpsertSalesTaxByName(ctx context.Context, tax domain.SalesTax) (*domain.SalesTax, error) {
	m := mapping.ToModelSalesTax(tax)
	query := `
		INSERT INTO sales_taxes (` + salesTaxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE
		SET rate = EXCLUDED.rate,
		    account_id = EXCLUDED.account_id,
		    is_active = EXCLUDED.is_active,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by
		RETURNING ` + salesTaxColumns + `;
	`
	stored, err := scanSalesTax(r.pool.QueryRow(ctx, query,
		m.SalesTaxID, m.Name, m.Rate, m.AccountID, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy))
	if err != nil {
		if mapped := mapPgError(err, "sales tax", m.Name); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to upsert sales tax %s: %w", m.Name, err)
	}
	domainTax := mapping.ToDomainSalesTax(stored)
	return &domainTax, nil
}
