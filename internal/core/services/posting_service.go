package services

import (
	"context"
	"errors"
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

const defaultStoreTimeout = 15 * time.Second

// postingService runs the posting pipeline: intake, rule resolution, line
// generation, balance validation, atomic store, and best-effort linkage.
type postingService struct {
	ledgerRepo   portsrepo.LedgerRepositoryWithTx
	accountRepo  portsrepo.AccountReader
	ruleRepo     portsrepo.RuleReader
	linkageRepo  portsrepo.LinkageRepository
	intake       *Intake
	registry     *StrategyRegistry
	storeTimeout time.Duration
}

// NewPostingService creates the posting engine with injected dependencies so
// tests can substitute in-memory fakes for every collaborator.
func NewPostingService(repos portsrepo.RepositoryProvider, intake *Intake, registry *StrategyRegistry, storeTimeout time.Duration) portssvc.PostingSvcFacade {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	if intake == nil {
		intake = NewIntake(time.Now)
	}
	if registry == nil {
		registry = NewStrategyRegistry()
	}
	return &postingService{
		ledgerRepo:   repos.LedgerRepo,
		accountRepo:  repos.AccountRepo,
		ruleRepo:     repos.RuleRepo,
		linkageRepo:  repos.LinkageRepo,
		intake:       intake,
		registry:     registry,
		storeTimeout: storeTimeout,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// PostTransaction implements portssvc.PostingWriterSvc.
//
// Everything through balance validation is pre-commit: a failure there
// guarantees zero side effects. A storage failure rolls back atomically. A
// linkage failure leaves the entries durable and Posted; the result is
// returned together with an error unwrapping to apperrors.ErrLinkage.
func (s *postingService) PostTransaction(ctx context.Context, organizationID string, req dto.PostTransactionRequest, userID string) (*dto.PostingResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.intake.Normalize(organizationID, req, userID)
	if err != nil {
		return nil, err
	}

	// Idempotent replay: a key already used by this organization returns the
	// entries created the first time, never a duplicate posting.
	if txn.IdempotencyKey != nil && *txn.IdempotencyKey != "" {
		existing, err := s.ledgerRepo.FindEntriesByIdempotencyKey(ctx, organizationID, *txn.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("%w: idempotency lookup failed: %v", apperrors.ErrStorage, err)
		}
		if len(existing) > 0 {
			logger.Info("Idempotency key already posted, returning existing entries",
				slog.String("idempotency_key", *txn.IdempotencyKey))
			return replayResult(existing), nil
		}
	}

	strategy, err := s.registry.StrategyFor(txn.Category)
	if err != nil {
		return nil, err
	}
	strategyName := strings.ToLower(string(txn.Category))

	accounts, err := s.resolveAccounts(ctx, txn, strategy)
	if err != nil {
		return nil, err
	}

	drafts, err := strategy.Generate(txn, *accounts)
	if err != nil {
		return nil, fmt.Errorf("line generation failed for category %s: %w", txn.Category, err)
	}

	entries := make([]domain.JournalEntry, len(drafts))
	for i, draft := range drafts {
		totalDebit, totalCredit, err := ValidateEntryBalance(draft.Lines, strategyName)
		if err != nil {
			logger.Warn("Generated entry failed balance validation",
				slog.String("category", string(txn.Category)), slog.String("error", err.Error()))
			return nil, err
		}

		entryID := uuid.NewString()
		reference := txn.ReferenceNumber
		if draft.Tag != "" {
			reference = reference + "-" + draft.Tag
		}
		for j := range draft.Lines {
			draft.Lines[j].EntryID = entryID
		}

		entries[i] = domain.JournalEntry{
			EntryID:         entryID,
			OrganizationID:  organizationID,
			TransactionID:   txn.TransactionID,
			ReferenceNumber: reference,
			EntryDate:       txn.TransactionDate,
			Description:     draft.Memo,
			TotalDebit:      totalDebit,
			TotalCredit:     totalCredit,
			Balanced:        true,
			Classification:  txn.Classification,
			Status:          domain.EntryBalanced,
			Lines:           draft.Lines,
			AuditFields:     txn.AuditFields,
		}
	}

	attributes := buildAttributes(txn, entries)

	// The commit is what makes an entry Posted, so the durable header rows
	// carry POSTED from the start; linkage later upgrades them to LINKED.
	entryIDs := make([]string, len(entries))
	for i := range entries {
		entries[i].Status = domain.EntryPosted
		entryIDs[i] = entries[i].EntryID
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	txn.Status = domain.TxnPending
	if err := s.ledgerRepo.SaveTransactionWithEntries(storeCtx, txn, entries, attributes); err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: ledger store write exceeded %s", apperrors.ErrTimeout, s.storeTimeout)
		case errors.Is(err, apperrors.ErrDuplicate) && txn.IdempotencyKey != nil:
			// Lost a concurrent race on the idempotency key; the winner's
			// entries are the canonical result.
			existing, ferr := s.ledgerRepo.FindEntriesByIdempotencyKey(ctx, organizationID, *txn.IdempotencyKey)
			if ferr != nil || len(existing) == 0 {
				return nil, fmt.Errorf("%w: idempotency conflict but existing entries not found: %v", apperrors.ErrStorage, ferr)
			}
			return replayResult(existing), nil
		default:
			logger.Error("Failed to persist journal entries", slog.String("error", err.Error()),
				slog.String("transaction_id", txn.TransactionID))
			return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
		}
	}

	// Linkage is best-effort and decoupled: the entries above are already
	// durable, so a failure here is reported, queued for retry, and never
	// rolls anything back.
	if err := s.linkageRepo.RecordLinks(ctx, organizationID, txn.TransactionID, entryIDs, userID); err != nil {
		logger.Error("Linkage write failed after successful posting",
			slog.String("transaction_id", txn.TransactionID), slog.String("error", err.Error()))
		pending := domain.PendingLinkage{
			LinkageID:      uuid.NewString(),
			OrganizationID: organizationID,
			TransactionID:  txn.TransactionID,
			EntryIDs:       entryIDs,
			CreatedAt:      time.Now().UTC(),
		}
		if qerr := s.linkageRepo.EnqueuePending(ctx, pending); qerr != nil {
			logger.Error("Failed to enqueue linkage retry", slog.String("error", qerr.Error()))
		}
		result := buildResult(txn, entries, false, false)
		return result, &apperrors.LinkageError{TransactionID: txn.TransactionID, EntryIDs: entryIDs, Err: err}
	}

	for i := range entries {
		entries[i].Status = domain.EntryLinked
	}
	logger.Info("Business transaction posted",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("reference", txn.ReferenceNumber),
		slog.Int("entry_count", len(entries)))
	return buildResult(txn, entries, true, false), nil
}

// resolveAccounts selects the mapping rule(s) for the transaction and loads
// every referenced account, enforcing that each exists, is active, and
// belongs to the posting organization.
func (s *postingService) resolveAccounts(ctx context.Context, txn domain.BusinessTransaction, strategy LineStrategy) (*ResolvedAccounts, error) {
	rules, err := s.ruleRepo.ListActiveRules(ctx, txn.OrganizationID, txn.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load mapping rules: %v", apperrors.ErrStorage, err)
	}

	conditions := txn.Detail.Conditions()
	primary, err := resolvePrimary(rules, txn.Category, conditions)
	if err != nil {
		return nil, err
	}

	componentRules := make(map[string]*domain.MappingRule)
	codes := []string{primary.DebitAccountCode, primary.CreditAccountCode}
	for _, component := range strategy.Components(txn) {
		rule, err := resolveComponent(rules, txn.Category, conditions, component)
		if err != nil {
			return nil, err
		}
		componentRules[component] = rule
		codes = append(codes, rule.DebitAccountCode, rule.CreditAccountCode)
	}

	accountsByCode, err := s.accountRepo.FindAccountsByCodes(ctx, txn.OrganizationID, uniqueStrings(codes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load accounts: %v", apperrors.ErrStorage, err)
	}

	lookup := func(code string) (domain.Account, error) {
		account, ok := accountsByCode[code]
		if !ok {
			return domain.Account{}, &apperrors.UnknownAccountError{
				OrganizationID: txn.OrganizationID, AccountCode: code, Reason: "not in chart of accounts"}
		}
		if account.OrganizationID != txn.OrganizationID {
			return domain.Account{}, &apperrors.UnknownAccountError{
				OrganizationID: txn.OrganizationID, AccountCode: code, Reason: "belongs to another organization"}
		}
		if !account.IsActive {
			return domain.Account{}, &apperrors.UnknownAccountError{
				OrganizationID: txn.OrganizationID, AccountCode: code, Reason: "account is inactive"}
		}
		return account, nil
	}

	resolved := &ResolvedAccounts{Components: make(map[string]domain.AccountPair)}
	if resolved.Debit, err = lookup(primary.DebitAccountCode); err != nil {
		return nil, err
	}
	if resolved.Credit, err = lookup(primary.CreditAccountCode); err != nil {
		return nil, err
	}
	for component, rule := range componentRules {
		pair := domain.AccountPair{}
		if pair.Debit, err = lookup(rule.DebitAccountCode); err != nil {
			return nil, err
		}
		if pair.Credit, err = lookup(rule.CreditAccountCode); err != nil {
			return nil, err
		}
		resolved.Components[component] = pair
	}
	return resolved, nil
}

// buildAttributes turns caller metadata into extensible name/value rows on
// the primary entry. Business-critical fields never travel this way; they are
// typed detail fields validated at intake.
func buildAttributes(txn domain.BusinessTransaction, entries []domain.JournalEntry) []domain.Attribute {
	if len(txn.Metadata) == 0 || len(entries) == 0 {
		return nil
	}
	attributes := make([]domain.Attribute, 0, len(txn.Metadata))
	for name, value := range txn.Metadata {
		attributes = append(attributes, domain.Attribute{
			AttributeID:    uuid.NewString(),
			OrganizationID: txn.OrganizationID,
			EntryID:        entries[0].EntryID,
			Name:           name,
			Value:          value,
			Classification: txn.Classification.String(),
			CreatedAt:      txn.CreatedAt,
		})
	}
	return attributes
}

func buildResult(txn domain.BusinessTransaction, entries []domain.JournalEntry, linked, alreadyPosted bool) *dto.PostingResult {
	responses := make([]dto.JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToJournalEntryResponse(&entries[i])
	}
	return &dto.PostingResult{
		TransactionID:   txn.TransactionID,
		ReferenceNumber: txn.ReferenceNumber,
		Classification:  txn.Classification.String(),
		Entries:         responses,
		Linked:          linked,
		AlreadyPosted:   alreadyPosted,
	}
}

// replayResult assembles the posting result for an idempotent replay from
// the entries persisted by the first request.
func replayResult(entries []domain.JournalEntry) *dto.PostingResult {
	responses := make([]dto.JournalEntryResponse, len(entries))
	linked := true
	for i := range entries {
		responses[i] = dto.ToJournalEntryResponse(&entries[i])
		if entries[i].Status != domain.EntryLinked {
			linked = false
		}
	}
	result := &dto.PostingResult{
		Entries:       responses,
		Linked:        linked,
		AlreadyPosted: true,
	}
	if len(entries) > 0 {
		result.TransactionID = entries[0].TransactionID
		result.ReferenceNumber = entries[0].ReferenceNumber
		result.Classification = entries[0].Classification.String()
	}
	return result
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
