package domain

// ConditionAny is the wildcard value; it matches any transaction value for its key.
const ConditionAny = "*"

// MappingRule describes which accounts to debit and credit for a transaction
// category under given conditions. Rules are data, not code: organizations
// override or extend a set of global defaults.
type MappingRule struct {
	RuleID            string              `json:"ruleID"`                   // Primary Key (UUID)
	OrganizationID    *string             `json:"organizationID,omitempty"` // nil = global default rule
	Category          TransactionCategory `json:"category"`
	Conditions        map[string]string   `json:"conditions"` // Key/value match conditions; "*" is wildcard
	DebitAccountCode  string              `json:"debitAccountCode"`
	CreditAccountCode string              `json:"creditAccountCode"`
	Priority          int                 `json:"priority"` // Higher wins
	IsActive          bool                `json:"isActive"`
	AuditFields
}

// IsGlobal reports whether the rule is a global default rather than
// organization-specific.
func (r MappingRule) IsGlobal() bool { return r.OrganizationID == nil }

// Matches reports whether every rule condition is satisfied by the
// transaction's conditions: a wildcard matches anything, a concrete value
// must be present and equal.
func (r MappingRule) Matches(conditions map[string]string) bool {
	for key, want := range r.Conditions {
		if want == ConditionAny {
			continue
		}
		got, ok := conditions[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Specificity counts the rule's concrete (non-wildcard) conditions. More
// specific rules win ties within the same priority band.
func (r MappingRule) Specificity() int {
	n := 0
	for _, v := range r.Conditions {
		if v != ConditionAny {
			n++
		}
	}
	return n
}
