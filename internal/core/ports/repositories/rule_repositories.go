package repositories

import (
	"context"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
)

// RuleReader provides read access to account mapping rules.
type RuleReader interface {
	// ListActiveRules retrieves every active rule applicable to the
	// organization for a category: the organization's own rules plus the
	// global defaults. Rules of other organizations are never returned.
	ListActiveRules(ctx context.Context, organizationID string, category domain.TransactionCategory) ([]domain.MappingRule, error)

	// ListRules retrieves all rules visible to the organization, active or not.
	ListRules(ctx context.Context, organizationID string) ([]domain.MappingRule, error)
}

// RuleWriter defines write operations for mapping rule configuration.
type RuleWriter interface {
	// SaveRule persists a new mapping rule.
	SaveRule(ctx context.Context, rule domain.MappingRule) error
}

// RuleRepositoryFacade combines all rule repository interfaces.
type RuleRepositoryFacade interface {
	RuleReader
	RuleWriter
}
