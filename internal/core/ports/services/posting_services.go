package services

import (
	"context"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	"github.com/openbooks/ledger_posting_app/internal/dto"
)

// PostingWriterSvc turns validated business transactions into posted journal entries.
type PostingWriterSvc interface {
	// PostTransaction runs the full Intake -> Resolve -> Generate -> Validate
	// -> Store -> Link pipeline for one business transaction. On a linkage
	// failure the returned result is still valid (entries are durable) and
	// the error unwraps to apperrors.ErrLinkage.
	PostTransaction(ctx context.Context, organizationID string, req dto.PostTransactionRequest, userID string) (*dto.PostingResult, error)

	// ReverseEntry posts a compensating entry with swapped debit/credit lines.
	ReverseEntry(ctx context.Context, organizationID, entryID, userID string) (*domain.JournalEntry, error)
}

// PostingReaderSvc defines read operations for posted journal data.
type PostingReaderSvc interface {
	// GetEntryByID retrieves an entry with its lines and attributes.
	GetEntryByID(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a token-paginated list of the organization's entries.
	ListEntries(ctx context.Context, organizationID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// LinkageRetrySvc re-drives back-reference writes that failed post-commit.
type LinkageRetrySvc interface {
	// RetryPendingLinkages processes the linkage outbox once and returns the
	// number of rows successfully linked.
	RetryPendingLinkages(ctx context.Context) (int, error)
}

// PostingSvcFacade combines all posting engine service interfaces.
type PostingSvcFacade interface {
	PostingWriterSvc
	PostingReaderSvc
	LinkageRetrySvc
}
