package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_posting_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_posting_app/internal/core/ports/services"
	"github.com/openbooks/ledger_posting_app/internal/dto"
	"github.com/openbooks/ledger_posting_app/internal/middleware"
)

type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	orgRepo     portsrepo.OrganizationReader
}

// NewAccountService creates the chart-of-accounts service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, orgRepo portsrepo.OrganizationReader) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo, orgRepo: orgRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, organizationID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.orgRepo.FindOrganizationByID(ctx, organizationID); err != nil {
		return nil, fmt.Errorf("organization %s: %w", organizationID, err)
	}

	if existing, err := s.accountRepo.FindAccountsByCodes(ctx, organizationID, []string{req.Code}); err == nil {
		if _, taken := existing[req.Code]; taken {
			return nil, fmt.Errorf("%w: account code %s already exists in organization", apperrors.ErrDuplicate, req.Code)
		}
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		OrganizationID: organizationID,
		Code:           req.Code,
		Name:           req.Name,
		AccountType:    domain.AccountType(req.AccountType),
		Description:    req.Description,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("code", req.Code), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, organizationID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, organizationID, accountID)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountsByCodes(ctx context.Context, organizationID string, codes []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByCodes(ctx, organizationID, codes)
}

func (s *accountService) ListAccounts(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Account, *string, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.accountRepo.ListAccounts(ctx, organizationID, limit, nextToken)
}

func (s *accountService) DeactivateAccount(ctx context.Context, organizationID string, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if _, err := s.accountRepo.FindAccountByID(ctx, organizationID, accountID); err != nil {
		return err
	}
	if err := s.accountRepo.DeactivateAccount(ctx, organizationID, accountID, userID); err != nil {
		logger.Error("Failed to deactivate account", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	logger.Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}
