package models

// MappingRule is a persisted account mapping rule. Conditions are stored as
// JSONB; a NULL organization_id marks a global default shared by every tenant.
type MappingRule struct {
	RuleID            string            `db:"rule_id"`
	OrganizationID    *string           `db:"organization_id"` // NULL for global defaults
	Category          string            `db:"category"`
	Conditions        map[string]string `db:"conditions"` // JSONB column
	DebitAccountCode  string            `db:"debit_account_code"`
	CreditAccountCode string            `db:"credit_account_code"`
	Priority          int               `db:"priority"`
	IsActive          bool              `db:"is_active"`
	AuditFields
}
