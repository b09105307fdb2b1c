package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_posting_app/internal/core/ports/repositories"
	"github.com/openbooks/ledger_posting_app/internal/models"
	"github.com/openbooks/ledger_posting_app/internal/utils/mapping"
)

type PgxOrganizationRepository struct {
	pool *pgxpool.Pool
}

// newPgxOrganizationRepository creates a new repository for tenant records.
func newPgxOrganizationRepository(pool *pgxpool.Pool) portsrepo.OrganizationReader {
	return &PgxOrganizationRepository{pool: pool}
}

var _ portsrepo.OrganizationReader = (*PgxOrganizationRepository)(nil)

// FindOrganizationByID retrieves an organization by its ID.
func (r *PgxOrganizationRepository) FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error) {
	query := `
		SELECT organization_id, name, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM organizations
		WHERE organization_id = $1;
	`
	var m models.Organization
	err := r.pool.QueryRow(ctx, query, organizationID).Scan(
		&m.OrganizationID, &m.Name, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("organization %s not found", organizationID))
		}
		return nil, fmt.Errorf("failed to find organization %s: %w", organizationID, err)
	}
	org := mapping.ToDomainOrganization(m)
	return &org, nil
}
