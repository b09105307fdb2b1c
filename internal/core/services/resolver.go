package services

import (
	"sort"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	"github.com/openbooks/ledger_posting_app/internal/core/domain"
)

// ResolveMapping selects the mapping rule for a category and set of detail
// conditions. It is a pure function of its inputs: given the same rule set
// and conditions it always returns the same rule.
//
// Selection order among matching rules:
//  1. higher priority
//  2. organization-specific rules before global defaults, within the same
//     priority band
//  3. more concrete (non-wildcard) conditions
//  4. lexically smaller rule ID, for determinism
//
// If no rule matches, the attempted category and conditions are reported via
// MappingNotFoundError; there is no silent fallback account.
func ResolveMapping(rules []domain.MappingRule, category domain.TransactionCategory, conditions map[string]string) (*domain.MappingRule, error) {
	matching := make([]domain.MappingRule, 0, len(rules))
	for _, r := range rules {
		if !r.IsActive || r.Category != category {
			continue
		}
		if r.Matches(conditions) {
			matching = append(matching, r)
		}
	}

	if len(matching) == 0 {
		return nil, &apperrors.MappingNotFoundError{
			Category:   string(category),
			Conditions: conditions,
		}
	}

	sort.Slice(matching, func(i, j int) bool {
		a, b := matching[i], matching[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.IsGlobal() != b.IsGlobal() {
			return !a.IsGlobal() // org-specific first within a priority band
		}
		if sa, sb := a.Specificity(), b.Specificity(); sa != sb {
			return sa > sb
		}
		return a.RuleID < b.RuleID
	})

	winner := matching[0]
	return &winner, nil
}

// resolveComponent resolves an auxiliary account pair (tax payable,
// withholding payable, cost of goods) through the same rule system, by
// adding the reserved component condition to the transaction's own.
func resolveComponent(rules []domain.MappingRule, category domain.TransactionCategory, conditions map[string]string, component string) (*domain.MappingRule, error) {
	withComponent := make(map[string]string, len(conditions)+1)
	for k, v := range conditions {
		withComponent[k] = v
	}
	withComponent[domain.CondComponent] = component

	matching := make([]domain.MappingRule, 0, 4)
	for _, r := range rules {
		// Component rules must name the component explicitly; the primary
		// pair must never be selected for an auxiliary line.
		if r.Conditions[domain.CondComponent] != component {
			continue
		}
		matching = append(matching, r)
	}
	return ResolveMapping(matching, category, withComponent)
}

// resolvePrimary resolves the transaction's main debit/credit pair. Rules
// carrying a component condition are auxiliary and excluded here.
func resolvePrimary(rules []domain.MappingRule, category domain.TransactionCategory, conditions map[string]string) (*domain.MappingRule, error) {
	primary := make([]domain.MappingRule, 0, len(rules))
	for _, r := range rules {
		if _, isComponent := r.Conditions[domain.CondComponent]; isComponent {
			continue
		}
		primary = append(primary, r)
	}
	return ResolveMapping(primary, category, conditions)
}
