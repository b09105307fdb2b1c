package repositories

import (
	"context"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
)

// AccountReader defines read operations against an organization's chart of accounts.
// The organization ID is always an explicit parameter; the repository never
// infers it from ambient state.
type AccountReader interface {
	// FindAccountByID retrieves a single account, scoped to the organization.
	FindAccountByID(ctx context.Context, organizationID, accountID string) (*domain.Account, error)

	// FindAccountsByCodes retrieves the organization's accounts for the given
	// codes, keyed by code. Codes absent from the chart are simply missing
	// from the map; the caller decides whether that is an error.
	FindAccountsByCodes(ctx context.Context, organizationID string, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a token-paginated list of the organization's accounts.
	ListAccounts(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Account, *string, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount soft-deletes an account so it rejects new postings.
	DeactivateAccount(ctx context.Context, organizationID, accountID, userID string) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
