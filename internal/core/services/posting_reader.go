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
	"github.com/openbooks/ledger_posting_app/internal/dto"
	"github.com/openbooks/ledger_posting_app/internal/middleware"
)

// GetEntryByID implements portssvc.PostingReaderSvc.
func (s *postingService) GetEntryByID(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, organizationID, entryID)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntries implements portssvc.PostingReaderSvc.
func (s *postingService) ListEntries(ctx context.Context, organizationID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var nextToken *string
	if params.NextToken != nil && *params.NextToken != "" {
		nextToken = params.NextToken
	}

	entries, newToken, err := s.ledgerRepo.ListEntries(ctx, organizationID, limit, nextToken)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list entries: %v", apperrors.ErrStorage, err)
	}

	responses := make([]dto.JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToJournalEntryResponse(&entries[i])
	}
	return &dto.ListEntriesResponse{Entries: responses, NextToken: newToken}, nil
}

// ReverseEntry implements portssvc.PostingWriterSvc. The original entry is
// never mutated; correction is a new compensating entry with swapped sides
// that references the original, after which the original moves to REVERSED.
func (s *postingService) ReverseEntry(ctx context.Context, organizationID, entryID, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.ledgerRepo.FindEntryByID(ctx, organizationID, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status == domain.EntryReversed {
		return nil, fmt.Errorf("%w: entry %s is already reversed", apperrors.ErrValidation, entryID)
	}
	if original.OriginalEntryID != nil {
		return nil, fmt.Errorf("%w: entry %s is itself a reversal", apperrors.ErrValidation, entryID)
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()
	originalID := original.EntryID
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}

	lines := make([]domain.JournalLine, len(original.Lines))
	for i, line := range original.Lines {
		lines[i] = domain.JournalLine{
			LineID:          uuid.NewString(),
			EntryID:         reversalID,
			OrganizationID:  organizationID,
			AccountID:       line.AccountID,
			AccountCode:     line.AccountCode,
			Debit:           line.Credit,
			Credit:          line.Debit,
			Description:     line.Description,
			RelatedEntityID: line.RelatedEntityID,
			AuditFields:     audit,
		}
	}

	totalDebit, totalCredit, err := ValidateEntryBalance(lines, "reversal")
	if err != nil {
		return nil, err
	}

	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		OrganizationID:  organizationID,
		TransactionID:   original.TransactionID,
		ReferenceNumber: original.ReferenceNumber + "-REV",
		EntryDate:       now,
		Description:     "Reversal of " + original.ReferenceNumber,
		TotalDebit:      totalDebit,
		TotalCredit:     totalCredit,
		Balanced:        true,
		Classification:  original.Classification,
		Status:          domain.EntryPosted,
		OriginalEntryID: &originalID,
		Lines:           lines,
		AuditFields:     audit,
	}

	category := domain.TransactionCategory(strings.ToUpper(original.Classification.Category))
	reversalTxn := domain.BusinessTransaction{
		TransactionID:   uuid.NewString(),
		OrganizationID:  organizationID,
		Category:        category,
		Amount:          totalDebit,
		TransactionDate: now,
		Description:     reversal.Description,
		ReferenceNumber: reversal.ReferenceNumber,
		Classification:  original.Classification,
		Status:          domain.TxnPending,
		AuditFields:     audit,
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.ledgerRepo.SaveTransactionWithEntries(storeCtx, reversalTxn, []domain.JournalEntry{reversal}, nil); err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: ledger store write exceeded %s", apperrors.ErrTimeout, s.storeTimeout)
		case errors.Is(err, apperrors.ErrDuplicate):
			// Lost a concurrent race to reverse the same entry; the unique
			// index on the original-entry reference rejected this insert.
			return nil, fmt.Errorf("%w: entry %s was reversed concurrently", apperrors.ErrDuplicate, entryID)
		default:
			logger.Error("Failed to persist reversal entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
		}
	}

	if err := s.ledgerRepo.UpdateEntryStatus(ctx, organizationID, originalID, domain.EntryReversed, userID); err != nil {
		// The reversal is durable; the stale status on the original is
		// observable but harmless, and the next reversal attempt is rejected
		// by the OriginalEntryID back-reference.
		logger.Error("Reversal persisted but original status update failed",
			slog.String("entry_id", originalID), slog.String("error", err.Error()))
	}

	if err := s.linkageRepo.RecordLinks(ctx, organizationID, reversalTxn.TransactionID, []string{reversalID}, userID); err != nil {
		logger.Error("Linkage write failed for reversal entry", slog.String("error", err.Error()))
		return &reversal, &apperrors.LinkageError{TransactionID: reversalTxn.TransactionID, EntryIDs: []string{reversalID}, Err: err}
	}
	reversal.Status = domain.EntryLinked

	logger.Info("Entry reversed", slog.String("original_entry_id", originalID), slog.String("reversal_entry_id", reversalID))
	return &reversal, nil
}

// RetryPendingLinkages implements portssvc.LinkageRetrySvc. It drains one
// batch of the linkage outbox; rows that fail again stay queued with an
// incremented attempt counter.
func (s *postingService) RetryPendingLinkages(ctx context.Context) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	pending, err := s.linkageRepo.ListPending(ctx, 100)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to list pending linkages: %v", apperrors.ErrStorage, err)
	}

	linked := 0
	for _, row := range pending {
		if err := s.linkageRepo.RecordLinks(ctx, row.OrganizationID, row.TransactionID, row.EntryIDs, "linkage-retry"); err != nil {
			logger.Warn("Linkage retry failed",
				slog.String("transaction_id", row.TransactionID), slog.Int("attempts", row.Attempts+1),
				slog.String("error", err.Error()))
			if ierr := s.linkageRepo.IncrementAttempts(ctx, row.LinkageID); ierr != nil {
				logger.Error("Failed to bump linkage attempt counter", slog.String("error", ierr.Error()))
			}
			continue
		}
		if err := s.linkageRepo.MarkCompleted(ctx, row.LinkageID); err != nil {
			logger.Error("Failed to remove completed linkage outbox row", slog.String("error", err.Error()))
		}
		linked++
	}

	if linked > 0 {
		logger.Info("Linkage retries completed", slog.Int("linked", linked), slog.Int("pending_seen", len(pending)))
	}
	return linked, nil
}
