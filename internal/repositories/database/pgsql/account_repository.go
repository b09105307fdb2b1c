package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_posting_app/internal/core/ports/repositories"
	"github.com/openbooks/ledger_posting_app/internal/models"
	"github.com/openbooks/ledger_posting_app/internal/utils/mapping"
	"github.com/openbooks/ledger_posting_app/internal/utils/pagination"
)

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// newPgxAccountRepository creates a new repository for chart-of-accounts data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{pool: pool}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, organization_id, code, name, account_type, description, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID, &m.OrganizationID, &m.Code, &m.Name, &m.AccountType,
		&m.Description, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.pool.Exec(ctx, query,
		m.AccountID, m.OrganizationID, m.Code, m.Name, m.AccountType,
		m.Description, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, account.Code)
		}
		return fmt.Errorf("failed to insert account %s: %w", account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves a single account scoped to the organization.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, organizationID, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE organization_id = $1 AND account_id = $2;`
	m, err := scanAccount(r.pool.QueryRow(ctx, query, organizationID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountID))
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// FindAccountsByCodes retrieves the organization's accounts for the given codes, keyed by code.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, organizationID string, codes []string) (map[string]domain.Account, error) {
	if len(codes) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE organization_id = $1 AND code = ANY($2);`
	rows, err := r.pool.Query(ctx, query, organizationID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by codes: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.Account, len(codes))
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		result[m.Code] = mapping.ToDomainAccount(m)
	}
	return result, rows.Err()
}

// ListAccounts retrieves a token-paginated list of the organization's accounts,
// ordered by creation time then ID for a stable cursor.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Account, *string, error) {
	args := []any{organizationID}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE organization_id = $1`

	if nextToken != nil && *nextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil || len(fields) != 2 {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, fields[1])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token timestamp", apperrors.ErrValidation)
		}
		query += ` AND (created_at, account_id) > ($2, $3)`
		args = append(args, createdAt, fields[0])
	}
	query += fmt.Sprintf(` ORDER BY created_at, account_id LIMIT %d;`, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, mapping.ToDomainAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var newToken *string
	if len(accounts) > limit {
		last := accounts[limit-1]
		token := pagination.EncodeMultiFieldToken(last.AccountID, last.CreatedAt.UTC().Format(time.RFC3339Nano))
		newToken = &token
		accounts = accounts[:limit]
	}
	return accounts, newToken, nil
}

// DeactivateAccount soft-deletes an account so it rejects new postings.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, organizationID, accountID, userID string) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE organization_id = $1 AND account_id = $2;
	`
	tag, err := r.pool.Exec(ctx, query, organizationID, accountID, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountID))
	}
	return nil
}
