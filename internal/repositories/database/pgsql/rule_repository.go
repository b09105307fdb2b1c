package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_posting_app/internal/core/ports/repositories"
	"github.com/openbooks/ledger_posting_app/internal/models"
	"github.com/openbooks/ledger_posting_app/internal/utils/mapping"
)

type PgxRuleRepository struct {
	pool *pgxpool.Pool
}

// newPgxRuleRepository creates a new repository for account mapping rules.
func newPgxRuleRepository(pool *pgxpool.Pool) portsrepo.RuleRepositoryFacade {
	return &PgxRuleRepository{pool: pool}
}

var _ portsrepo.RuleRepositoryFacade = (*PgxRuleRepository)(nil)

const ruleColumns = `rule_id, organization_id, category, conditions, debit_account_code, credit_account_code, priority, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanRule(row pgx.Row) (models.MappingRule, error) {
	var m models.MappingRule
	// pgx decodes the JSONB conditions column straight into the map.
	err := row.Scan(
		&m.RuleID, &m.OrganizationID, &m.Category, &m.Conditions,
		&m.DebitAccountCode, &m.CreditAccountCode, &m.Priority, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// SaveRule persists a new mapping rule. Conditions go into a JSONB column.
func (r *PgxRuleRepository) SaveRule(ctx context.Context, rule domain.MappingRule) error {
	m := mapping.ToModelMappingRule(rule)
	query := `
		INSERT INTO mapping_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.pool.Exec(ctx, query,
		m.RuleID, m.OrganizationID, m.Category, m.Conditions,
		m.DebitAccountCode, m.CreditAccountCode, m.Priority, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert mapping rule %s: %w", rule.RuleID, err)
	}
	return nil
}

// ListActiveRules retrieves the organization's active rules for a category
// plus the global defaults (NULL organization_id). Other tenants' rules are
// excluded by the WHERE clause, never by post-filtering.
func (r *PgxRuleRepository) ListActiveRules(ctx context.Context, organizationID string, category domain.TransactionCategory) ([]domain.MappingRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM mapping_rules
		WHERE (organization_id = $1 OR organization_id IS NULL)
		  AND category = $2
		  AND is_active = TRUE
		ORDER BY priority DESC, rule_id;
	`
	return r.queryRules(ctx, query, organizationID, string(category))
}

// ListRules retrieves all rules visible to the organization, active or not.
func (r *PgxRuleRepository) ListRules(ctx context.Context, organizationID string) ([]domain.MappingRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM mapping_rules
		WHERE organization_id = $1 OR organization_id IS NULL
		ORDER BY category, priority DESC, rule_id;
	`
	return r.queryRules(ctx, query, organizationID)
}

func (r *PgxRuleRepository) queryRules(ctx context.Context, query string, args ...any) ([]domain.MappingRule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping rules: %w", err)
	}
	defer rows.Close()

	var ms []models.MappingRule
	for rows.Next() {
		m, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mapping rule row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mapping.ToDomainMappingRuleSlice(ms), nil
}
