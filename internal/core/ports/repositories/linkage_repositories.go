package repositories

import (
	"context"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
)

// LinkageRepository records the back-reference from a posted business
// transaction to its journal entries, and manages the retry outbox for
// linkage writes that failed after the entries were already durable.
type LinkageRepository interface {
	// RecordLinks marks the transaction POSTED and its entries LINKED.
	RecordLinks(ctx context.Context, organizationID, transactionID string, entryIDs []string, userID string) error

	// EnqueuePending stores an outbox row for a failed linkage so it can be retried.
	EnqueuePending(ctx context.Context, pending domain.PendingLinkage) error

	// ListPending retrieves outbox rows awaiting retry, oldest first.
	ListPending(ctx context.Context, limit int) ([]domain.PendingLinkage, error)

	// MarkCompleted removes a successfully retried outbox row.
	MarkCompleted(ctx context.Context, linkageID string) error

	// IncrementAttempts bumps the retry counter after a failed attempt.
	IncrementAttempts(ctx context.Context, linkageID string) error
}
