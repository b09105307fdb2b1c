package dto

import "github.com/openbooks/ledger_posting_app/internal/core/domain"

// CreateRuleRequest adds an organization-specific account mapping rule.
// Condition values may be "*" to match any transaction value for that key.
type CreateRuleRequest struct {
	Category          string            `json:"category" binding:"required"`
	Conditions        map[string]string `json:"conditions"`
	DebitAccountCode  string            `json:"debitAccountCode" binding:"required"`
	CreditAccountCode string            `json:"creditAccountCode" binding:"required"`
	Priority          int               `json:"priority"`
}

// RuleResponse is the API representation of a mapping rule.
type RuleResponse struct {
	RuleID            string            `json:"ruleID"`
	OrganizationID    *string           `json:"organizationID,omitempty"`
	Category          string            `json:"category"`
	Conditions        map[string]string `json:"conditions"`
	DebitAccountCode  string            `json:"debitAccountCode"`
	CreditAccountCode string            `json:"creditAccountCode"`
	Priority          int               `json:"priority"`
	IsActive          bool              `json:"isActive"`
}

// ToRuleResponse converts a domain rule to its API representation.
func ToRuleResponse(r domain.MappingRule) RuleResponse {
	return RuleResponse{
		RuleID:            r.RuleID,
		OrganizationID:    r.OrganizationID,
		Category:          string(r.Category),
		Conditions:        r.Conditions,
		DebitAccountCode:  r.DebitAccountCode,
		CreditAccountCode: r.CreditAccountCode,
		Priority:          r.Priority,
		IsActive:          r.IsActive,
	}
}
