package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_posting_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_posting_app/internal/core/ports/services"
	"github.com/openbooks/ledger_posting_app/internal/dto"
	"github.com/openbooks/ledger_posting_app/internal/middleware"
)

type ruleService struct {
	ruleRepo    portsrepo.RuleRepositoryFacade
	accountRepo portsrepo.AccountReader
	orgRepo     portsrepo.OrganizationReader
}

// NewRuleService creates the mapping-rule configuration service.
func NewRuleService(ruleRepo portsrepo.RuleRepositoryFacade, accountRepo portsrepo.AccountReader, orgRepo portsrepo.OrganizationReader) portssvc.RuleSvcFacade {
	return &ruleService{ruleRepo: ruleRepo, accountRepo: accountRepo, orgRepo: orgRepo}
}

var _ portssvc.RuleSvcFacade = (*ruleService)(nil)

func (s *ruleService) CreateRule(ctx context.Context, organizationID string, req dto.CreateRuleRequest, userID string) (*domain.MappingRule, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	verr := &apperrors.ValidationError{}
	category := domain.TransactionCategory(strings.ToUpper(req.Category))
	if !category.IsValid() {
		verr.Add("category", fmt.Sprintf("unknown category %q", req.Category))
	}
	if req.DebitAccountCode == "" {
		verr.Add("debitAccountCode", "must be present")
	}
	if req.CreditAccountCode == "" {
		verr.Add("creditAccountCode", "must be present")
	}
	if verr.HasViolations() {
		return nil, verr
	}

	if _, err := s.orgRepo.FindOrganizationByID(ctx, organizationID); err != nil {
		return nil, fmt.Errorf("organization %s: %w", organizationID, err)
	}

	// Rule targets must already exist as active accounts so resolution can
	// never point at an unknown code.
	codes := []string{req.DebitAccountCode, req.CreditAccountCode}
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, organizationID, codes)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load accounts: %v", apperrors.ErrStorage, err)
	}
	for _, code := range codes {
		account, ok := accounts[code]
		if !ok {
			return nil, &apperrors.UnknownAccountError{OrganizationID: organizationID, AccountCode: code, Reason: "not in chart of accounts"}
		}
		if !account.IsActive {
			return nil, &apperrors.UnknownAccountError{OrganizationID: organizationID, AccountCode: code, Reason: "account is inactive"}
		}
	}

	now := time.Now().UTC()
	orgID := organizationID
	rule := domain.MappingRule{
		RuleID:            uuid.NewString(),
		OrganizationID:    &orgID,
		Category:          category,
		Conditions:        req.Conditions,
		DebitAccountCode:  req.DebitAccountCode,
		CreditAccountCode: req.CreditAccountCode,
		Priority:          req.Priority,
		IsActive:          true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if rule.Conditions == nil {
		rule.Conditions = map[string]string{}
	}

	if err := s.ruleRepo.SaveRule(ctx, rule); err != nil {
		logger.Error("Failed to save mapping rule", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	logger.Info("Mapping rule created", slog.String("rule_id", rule.RuleID), slog.String("category", string(category)))
	return &rule, nil
}

func (s *ruleService) ListRules(ctx context.Context, organizationID string) ([]domain.MappingRule, error) {
	return s.ruleRepo.ListRules(ctx, organizationID)
}
