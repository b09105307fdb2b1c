package mapping

import (
	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	"github.com/openbooks/ledger_posting_app/internal/models"
)

// ToModelMappingRule converts a domain MappingRule to a model MappingRule
func ToModelMappingRule(d domain.MappingRule) models.MappingRule {
	return models.MappingRule{
		RuleID:            d.RuleID,
		OrganizationID:    d.OrganizationID,
		Category:          string(d.Category),
		Conditions:        d.Conditions,
		DebitAccountCode:  d.DebitAccountCode,
		CreditAccountCode: d.CreditAccountCode,
		Priority:          d.Priority,
		IsActive:          d.IsActive,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMappingRule converts a model MappingRule to a domain MappingRule
func ToDomainMappingRule(m models.MappingRule) domain.MappingRule {
	return domain.MappingRule{
		RuleID:            m.RuleID,
		OrganizationID:    m.OrganizationID,
		Category:          domain.TransactionCategory(m.Category),
		Conditions:        m.Conditions,
		DebitAccountCode:  m.DebitAccountCode,
		CreditAccountCode: m.CreditAccountCode,
		Priority:          m.Priority,
		IsActive:          m.IsActive,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainMappingRuleSlice converts a slice of model MappingRules to domain MappingRules
func ToDomainMappingRuleSlice(ms []models.MappingRule) []domain.MappingRule {
	ds := make([]domain.MappingRule, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMappingRule(m)
	}
	return ds
}
