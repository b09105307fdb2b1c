package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_posting_app/internal/core/ports/repositories"
	"github.com/openbooks/ledger_posting_app/internal/core/services"
	"github.com/openbooks/ledger_posting_app/internal/dto"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryWithTx = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) SaveTransactionWithEntries(ctx context.Context, txn domain.BusinessTransaction, entries []domain.JournalEntry, attributes []domain.Attribute) error {
	args := m.Called(ctx, txn, entries, attributes)
	return args.Error(0)
}

func (m *MockLedgerRepository) UpdateEntryStatus(ctx context.Context, organizationID, entryID string, status domain.EntryStatus, userID string) error {
	args := m.Called(ctx, organizationID, entryID, status, userID)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindEntryByID(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindEntriesByTransactionID(ctx context.Context, organizationID, transactionID string) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindEntriesByIdempotencyKey(ctx context.Context, organizationID, idempotencyKey string) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListEntries(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, organizationID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		val := args.Get(1).(string)
		token = &val
	}
	return args.Get(0).([]domain.JournalEntry), token, args.Error(2)
}

func (m *MockLedgerRepository) FindAttributesByEntryID(ctx context.Context, organizationID, entryID string) ([]domain.Attribute, error) {
	args := m.Called(ctx, organizationID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attribute), args.Error(1)
}

func (m *MockLedgerRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	return nil, args.Error(1)
}

func (m *MockLedgerRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockLedgerRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, organizationID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, organizationID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, organizationID string, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, organizationID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Account, *string, error) {
	args := m.Called(ctx, organizationID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.Account), nil, args.Error(2)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, organizationID, accountID, userID string) error {
	args := m.Called(ctx, organizationID, accountID, userID)
	return args.Error(0)
}

// --- Mock RuleRepository ---
type MockRuleRepository struct {
	mock.Mock
}

var _ portsrepo.RuleRepositoryFacade = (*MockRuleRepository)(nil)

func (m *MockRuleRepository) ListActiveRules(ctx context.Context, organizationID string, category domain.TransactionCategory) ([]domain.MappingRule, error) {
	args := m.Called(ctx, organizationID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MappingRule), args.Error(1)
}

func (m *MockRuleRepository) ListRules(ctx context.Context, organizationID string) ([]domain.MappingRule, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MappingRule), args.Error(1)
}

func (m *MockRuleRepository) SaveRule(ctx context.Context, rule domain.MappingRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

// --- Mock LinkageRepository ---
type MockLinkageRepository struct {
	mock.Mock
}

var _ portsrepo.LinkageRepository = (*MockLinkageRepository)(nil)

func (m *MockLinkageRepository) RecordLinks(ctx context.Context, organizationID, transactionID string, entryIDs []string, userID string) error {
	args := m.Called(ctx, organizationID, transactionID, entryIDs, userID)
	return args.Error(0)
}

func (m *MockLinkageRepository) EnqueuePending(ctx context.Context, pending domain.PendingLinkage) error {
	args := m.Called(ctx, pending)
	return args.Error(0)
}

func (m *MockLinkageRepository) ListPending(ctx context.Context, limit int) ([]domain.PendingLinkage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PendingLinkage), args.Error(1)
}

func (m *MockLinkageRepository) MarkCompleted(ctx context.Context, linkageID string) error {
	args := m.Called(ctx, linkageID)
	return args.Error(0)
}

func (m *MockLinkageRepository) IncrementAttempts(ctx context.Context, linkageID string) error {
	args := m.Called(ctx, linkageID)
	return args.Error(0)
}

// --- Test Suite ---
type PostingServiceTestSuite struct {
	suite.Suite
	ledgerRepo  *MockLedgerRepository
	accountRepo *MockAccountRepository
	ruleRepo    *MockRuleRepository
	linkageRepo *MockLinkageRepository
	service     interface {
		PostTransaction(ctx context.Context, organizationID string, req dto.PostTransactionRequest, userID string) (*dto.PostingResult, error)
		ReverseEntry(ctx context.Context, organizationID, entryID, userID string) (*domain.JournalEntry, error)
		RetryPendingLinkages(ctx context.Context) (int, error)
	}
	ctx context.Context
}

func (s *PostingServiceTestSuite) SetupTest() {
	s.ledgerRepo = new(MockLedgerRepository)
	s.accountRepo = new(MockAccountRepository)
	s.ruleRepo = new(MockRuleRepository)
	s.linkageRepo = new(MockLinkageRepository)
	s.ctx = context.Background()

	repos := portsrepo.RepositoryProvider{
		AccountRepo: s.accountRepo,
		RuleRepo:    s.ruleRepo,
		LedgerRepo:  s.ledgerRepo,
		LinkageRepo: s.linkageRepo,
	}
	s.service = services.NewPostingService(repos, services.NewIntake(fixedClock), services.NewStrategyRegistry(), 5*time.Second)
}

func TestPostingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostingServiceTestSuite))
}

func (s *PostingServiceTestSuite) saleRules() []domain.MappingRule {
	return []domain.MappingRule{
		globalRule("rule-cash", domain.CategorySale, map[string]string{"paymentMethod": "cash"}, "CASH", "REVENUE", 10),
		globalRule("rule-tax", domain.CategorySale, map[string]string{"component": "tax"}, "REVENUE", "TAX_PAYABLE", 0),
	}
}

func (s *PostingServiceTestSuite) saleAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		"CASH":        account("acc-cash", "CASH", domain.Asset),
		"REVENUE":     account("acc-rev", "REVENUE", domain.Revenue),
		"TAX_PAYABLE": account("acc-tax", "TAX_PAYABLE", domain.Liability),
	}
}

func (s *PostingServiceTestSuite) TestPostCashSaleWithTax() {
	s.ruleRepo.On("ListActiveRules", mock.Anything, "org-1", domain.CategorySale).Return(s.saleRules(), nil)
	s.accountRepo.On("FindAccountsByCodes", mock.Anything, "org-1", mock.Anything).Return(s.saleAccounts(), nil)

	// Copy the captured slice: the service keeps mutating entry statuses on
	// its own copy after the store call returns.
	var savedEntries []domain.JournalEntry
	s.ledgerRepo.On("SaveTransactionWithEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedEntries = append([]domain.JournalEntry(nil), args.Get(2).([]domain.JournalEntry)...)
		}).Return(nil)
	s.linkageRepo.On("RecordLinks", mock.Anything, "org-1", mock.Anything, mock.Anything, "user-1").Return(nil)

	result, err := s.service.PostTransaction(s.ctx, "org-1", saleRequest(), "user-1")
	s.Require().NoError(err)
	s.Require().NotNil(result)

	s.True(result.Linked)
	s.False(result.AlreadyPosted)
	s.Contains(result.ReferenceNumber, "SAL-")
	s.Require().Len(result.Entries, 1)
	s.Equal(domain.EntryLinked, result.Entries[0].Status)

	// The durable header row reads POSTED; only linkage upgrades it to LINKED.
	s.Require().Len(savedEntries, 1)
	s.Equal(domain.EntryPosted, savedEntries[0].Status)
	s.True(savedEntries[0].Balanced)
	s.True(savedEntries[0].TotalDebit.Equal(decimal.NewFromInt(100)))
	s.True(savedEntries[0].TotalCredit.Equal(decimal.NewFromInt(100)))
	s.Len(savedEntries[0].Lines, 3)

	s.ledgerRepo.AssertExpectations(s.T())
	s.linkageRepo.AssertExpectations(s.T())
}

func (s *PostingServiceTestSuite) TestIdempotentReplayReturnsExistingEntries() {
	key := "client-key-1"
	req := saleRequest()
	req.IdempotencyKey = &key

	existing := []domain.JournalEntry{{
		EntryID:         "entry-1",
		OrganizationID:  "org-1",
		TransactionID:   "txn-1",
		ReferenceNumber: "SAL-FIRST",
		Status:          domain.EntryLinked,
		Classification:  domain.ClassifyTransaction(domain.CategorySale),
	}}
	s.ledgerRepo.On("FindEntriesByIdempotencyKey", mock.Anything, "org-1", key).Return(existing, nil)

	result, err := s.service.PostTransaction(s.ctx, "org-1", req, "user-1")
	s.Require().NoError(err)

	s.True(result.AlreadyPosted)
	s.True(result.Linked)
	s.Equal("txn-1", result.TransactionID)
	s.Equal("SAL-FIRST", result.ReferenceNumber)

	// Nothing new was resolved, generated, or written.
	s.ledgerRepo.AssertNotCalled(s.T(), "SaveTransactionWithEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.ruleRepo.AssertNotCalled(s.T(), "ListActiveRules", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PostingServiceTestSuite) TestIdempotencyRaceFallsBackToWinner() {
	key := "client-key-2"
	req := saleRequest()
	req.IdempotencyKey = &key

	existing := []domain.JournalEntry{{
		EntryID:        "entry-1",
		TransactionID:  "txn-winner",
		Status:         domain.EntryLinked,
		Classification: domain.ClassifyTransaction(domain.CategorySale),
	}}

	// First lookup sees nothing; the concurrent winner commits in between;
	// our insert trips the unique index and the second lookup finds theirs.
	s.ledgerRepo.On("FindEntriesByIdempotencyKey", mock.Anything, "org-1", key).Return([]domain.JournalEntry{}, nil).Once()
	s.ruleRepo.On("ListActiveRules", mock.Anything, "org-1", domain.CategorySale).Return(s.saleRules(), nil)
	s.accountRepo.On("FindAccountsByCodes", mock.Anything, "org-1", mock.Anything).Return(s.saleAccounts(), nil)
	s.ledgerRepo.On("SaveTransactionWithEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: idempotency key already used", apperrors.ErrDuplicate))
	s.ledgerRepo.On("FindEntriesByIdempotencyKey", mock.Anything, "org-1", key).Return(existing, nil).Once()

	result, err := s.service.PostTransaction(s.ctx, "org-1", req, "user-1")
	s.Require().NoError(err)
	s.True(result.AlreadyPosted)
	s.Equal("txn-winner", result.TransactionID)
}

func (s *PostingServiceTestSuite) TestUnknownAccountAbortsBeforeStore() {
	s.ruleRepo.On("ListActiveRules", mock.Anything, "org-1", domain.CategorySale).Return(s.saleRules(), nil)

	// TAX_PAYABLE missing from the chart of accounts.
	accounts := s.saleAccounts()
	delete(accounts, "TAX_PAYABLE")
	s.accountRepo.On("FindAccountsByCodes", mock.Anything, "org-1", mock.Anything).Return(accounts, nil)

	_, err := s.service.PostTransaction(s.ctx, "org-1", saleRequest(), "user-1")
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrUnknownAccount)

	var uerr *apperrors.UnknownAccountError
	s.Require().ErrorAs(err, &uerr)
	s.Equal("TAX_PAYABLE", uerr.AccountCode)

	s.ledgerRepo.AssertNotCalled(s.T(), "SaveTransactionWithEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PostingServiceTestSuite) TestInactiveAccountRejected() {
	s.ruleRepo.On("ListActiveRules", mock.Anything, "org-1", domain.CategorySale).Return(s.saleRules(), nil)

	accounts := s.saleAccounts()
	cash := accounts["CASH"]
	cash.IsActive = false
	accounts["CASH"] = cash
	s.accountRepo.On("FindAccountsByCodes", mock.Anything, "org-1", mock.Anything).Return(accounts, nil)

	_, err := s.service.PostTransaction(s.ctx, "org-1", saleRequest(), "user-1")
	s.ErrorIs(err, apperrors.ErrUnknownAccount)
}

func (s *PostingServiceTestSuite) TestMappingNotFound() {
	s.ruleRepo.On("ListActiveRules", mock.Anything, "org-1", domain.CategorySale).Return([]domain.MappingRule{}, nil)

	_, err := s.service.PostTransaction(s.ctx, "org-1", saleRequest(), "user-1")
	s.ErrorIs(err, apperrors.ErrMappingNotFound)
	s.accountRepo.AssertNotCalled(s.T(), "FindAccountsByCodes", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PostingServiceTestSuite) TestLinkageFailureStillReturnsResult() {
	s.ruleRepo.On("ListActiveRules", mock.Anything, "org-1", domain.CategorySale).Return(s.saleRules(), nil)
	s.accountRepo.On("FindAccountsByCodes", mock.Anything, "org-1", mock.Anything).Return(s.saleAccounts(), nil)
	s.ledgerRepo.On("SaveTransactionWithEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	s.linkageRepo.On("RecordLinks", mock.Anything, "org-1", mock.Anything, mock.Anything, "user-1").
		Return(fmt.Errorf("connection reset"))
	s.linkageRepo.On("EnqueuePending", mock.Anything, mock.Anything).Return(nil)

	result, err := s.service.PostTransaction(s.ctx, "org-1", saleRequest(), "user-1")

	// The entries are durable, so the caller gets BOTH the result and a
	// linkage error to act on.
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrLinkage)
	s.Require().NotNil(result)
	s.False(result.Linked)
	s.Require().Len(result.Entries, 1)
	s.Equal(domain.EntryPosted, result.Entries[0].Status)

	s.linkageRepo.AssertCalled(s.T(), "EnqueuePending", mock.Anything, mock.Anything)
}

func (s *PostingServiceTestSuite) TestStorageFailureRollsUpAsStorageError() {
	s.ruleRepo.On("ListActiveRules", mock.Anything, "org-1", domain.CategorySale).Return(s.saleRules(), nil)
	s.accountRepo.On("FindAccountsByCodes", mock.Anything, "org-1", mock.Anything).Return(s.saleAccounts(), nil)
	s.ledgerRepo.On("SaveTransactionWithEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("disk on fire"))

	result, err := s.service.PostTransaction(s.ctx, "org-1", saleRequest(), "user-1")
	s.Nil(result)
	s.ErrorIs(err, apperrors.ErrStorage)
	s.linkageRepo.AssertNotCalled(s.T(), "RecordLinks", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PostingServiceTestSuite) TestSaleWithCogsPersistsTwoEntries() {
	rules := append(s.saleRules(),
		globalRule("rule-cogs", domain.CategorySale, map[string]string{"component": "cogs"}, "COGS", "INVENTORY", 0))
	accounts := s.saleAccounts()
	accounts["COGS"] = account("acc-cogs", "COGS", domain.Expense)
	accounts["INVENTORY"] = account("acc-inv", "INVENTORY", domain.Asset)

	s.ruleRepo.On("ListActiveRules", mock.Anything, "org-1", domain.CategorySale).Return(rules, nil)
	s.accountRepo.On("FindAccountsByCodes", mock.Anything, "org-1", mock.Anything).Return(accounts, nil)

	var savedEntries []domain.JournalEntry
	s.ledgerRepo.On("SaveTransactionWithEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedEntries = append([]domain.JournalEntry(nil), args.Get(2).([]domain.JournalEntry)...)
		}).Return(nil)
	s.linkageRepo.On("RecordLinks", mock.Anything, "org-1", mock.Anything, mock.Anything, "user-1").Return(nil)

	req := saleRequest()
	req.Detail = []byte(`{"paymentMethod": "cash", "taxAmount": "10", "costOfGoods": "60"}`)

	result, err := s.service.PostTransaction(s.ctx, "org-1", req, "user-1")
	s.Require().NoError(err)
	s.Require().Len(result.Entries, 2)

	s.Require().Len(savedEntries, 2)
	s.Contains(savedEntries[1].ReferenceNumber, "-COGS")
	s.True(savedEntries[1].TotalDebit.Equal(decimal.NewFromInt(60)))
	// Both entries reference the same business transaction.
	s.Equal(savedEntries[0].TransactionID, savedEntries[1].TransactionID)
}

func (s *PostingServiceTestSuite) TestStoreDeadlineSurfacesAsTimeout() {
	s.ruleRepo.On("ListActiveRules", mock.Anything, "org-1", domain.CategorySale).Return(s.saleRules(), nil)
	s.accountRepo.On("FindAccountsByCodes", mock.Anything, "org-1", mock.Anything).Return(s.saleAccounts(), nil)
	s.ledgerRepo.On("SaveTransactionWithEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("write canceled: %w", context.DeadlineExceeded))

	result, err := s.service.PostTransaction(s.ctx, "org-1", saleRequest(), "user-1")
	s.Nil(result)
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrTimeout)
	s.NotErrorIs(err, apperrors.ErrValidation)
	s.linkageRepo.AssertNotCalled(s.T(), "RecordLinks", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PostingServiceTestSuite) TestConcurrentReversalLosesRace() {
	original := &domain.JournalEntry{
		EntryID:         "entry-1",
		OrganizationID:  "org-1",
		TransactionID:   "txn-1",
		ReferenceNumber: "SAL-ORIG",
		Status:          domain.EntryLinked,
		Classification:  domain.ClassifyTransaction(domain.CategorySale),
		Lines: []domain.JournalLine{
			{LineID: "l-1", AccountID: "acc-cash", AccountCode: "CASH", Debit: decimal.NewFromInt(100), Credit: decimal.Zero},
			{LineID: "l-2", AccountID: "acc-rev", AccountCode: "REVENUE", Debit: decimal.Zero, Credit: decimal.NewFromInt(100)},
		},
	}
	s.ledgerRepo.On("FindEntryByID", mock.Anything, "org-1", "entry-1").Return(original, nil)

	// Both reversers pass the status check; the unique index on the
	// original-entry reference rejects the slower insert.
	s.ledgerRepo.On("SaveTransactionWithEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: idx_journal_entries_original", apperrors.ErrDuplicate))

	reversal, err := s.service.ReverseEntry(s.ctx, "org-1", "entry-1", "user-2")
	s.Nil(reversal)
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Contains(err.Error(), "reversed concurrently")
	s.ledgerRepo.AssertNotCalled(s.T(), "UpdateEntryStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PostingServiceTestSuite) TestRetryPendingLinkages() {
	pending := []domain.PendingLinkage{
		{LinkageID: "lk-1", OrganizationID: "org-1", TransactionID: "txn-1", EntryIDs: []string{"e-1"}},
		{LinkageID: "lk-2", OrganizationID: "org-2", TransactionID: "txn-2", EntryIDs: []string{"e-2"}, Attempts: 3},
	}
	s.linkageRepo.On("ListPending", mock.Anything, 100).Return(pending, nil)
	s.linkageRepo.On("RecordLinks", mock.Anything, "org-1", "txn-1", []string{"e-1"}, "linkage-retry").Return(nil)
	s.linkageRepo.On("MarkCompleted", mock.Anything, "lk-1").Return(nil)
	s.linkageRepo.On("RecordLinks", mock.Anything, "org-2", "txn-2", []string{"e-2"}, "linkage-retry").Return(fmt.Errorf("still down"))
	s.linkageRepo.On("IncrementAttempts", mock.Anything, "lk-2").Return(nil)

	linked, err := s.service.RetryPendingLinkages(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, linked)
	s.linkageRepo.AssertExpectations(s.T())
}
