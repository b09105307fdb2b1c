package services

import (
	"context"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	"github.com/openbooks/ledger_posting_app/internal/dto"
)

// AccountSvcFacade exposes the chart of accounts per organization.
type AccountSvcFacade interface {
	// CreateAccount adds an account to the organization's chart of accounts.
	CreateAccount(ctx context.Context, organizationID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// GetAccountByID retrieves a single account.
	GetAccountByID(ctx context.Context, organizationID, accountID string) (*domain.Account, error)

	// GetAccountsByCodes retrieves active accounts by code, keyed by code.
	GetAccountsByCodes(ctx context.Context, organizationID string, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a token-paginated list of accounts.
	ListAccounts(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Account, *string, error)

	// DeactivateAccount marks an account inactive.
	DeactivateAccount(ctx context.Context, organizationID, accountID, userID string) error
}

// RuleSvcFacade exposes mapping rule configuration per organization.
type RuleSvcFacade interface {
	// CreateRule adds an organization-specific mapping rule.
	CreateRule(ctx context.Context, organizationID string, req dto.CreateRuleRequest, userID string) (*domain.MappingRule, error)

	// ListRules retrieves the rules visible to the organization, including
	// global defaults.
	ListRules(ctx context.Context, organizationID string) ([]domain.MappingRule, error)
}
