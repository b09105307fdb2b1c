package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/openbooks/ledger_posting_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	ruleRepo := newPgxRuleRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool)
	linkageRepo := newPgxLinkageRepository(dbPool)
	organizationRepo := newPgxOrganizationRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:      accountRepo,
		RuleRepo:         ruleRepo,
		LedgerRepo:       ledgerRepo,
		LinkageRepo:      linkageRepo,
		OrganizationRepo: organizationRepo,
	}
}
