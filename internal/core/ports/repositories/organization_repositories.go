package repositories

import (
	"context"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
)

// OrganizationReader provides read access to tenant records.
type OrganizationReader interface {
	// FindOrganizationByID retrieves an organization by its ID.
	FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error)
}
