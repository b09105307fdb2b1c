package repositories

import (
	"context"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
)

// LedgerReader defines read operations for posted journal data.
type LedgerReader interface {
	// FindEntryByID retrieves an entry header with its lines, scoped to the organization.
	FindEntryByID(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error)

	// FindEntriesByTransactionID retrieves every entry posted for a business transaction.
	FindEntriesByTransactionID(ctx context.Context, organizationID, transactionID string) ([]domain.JournalEntry, error)

	// FindEntriesByIdempotencyKey retrieves the entries already posted under a
	// caller-supplied idempotency key, or an empty slice if the key is unused.
	FindEntriesByIdempotencyKey(ctx context.Context, organizationID, idempotencyKey string) ([]domain.JournalEntry, error)

	// ListEntries retrieves a token-paginated list of the organization's entries.
	ListEntries(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// FindAttributesByEntryID retrieves the extensible attribute rows of an entry.
	FindAttributesByEntryID(ctx context.Context, organizationID, entryID string) ([]domain.Attribute, error)
}

// LedgerWriter persists posting results. The write is a single atomic unit:
// the business transaction row, every entry header, every line, and every
// attribute row become visible together or not at all.
type LedgerWriter interface {
	// SaveTransactionWithEntries persists the normalized business transaction
	// alongside its balanced journal entries and attributes. Returns
	// apperrors.ErrDuplicate when the transaction's idempotency key has
	// already been used by this organization.
	SaveTransactionWithEntries(ctx context.Context, txn domain.BusinessTransaction, entries []domain.JournalEntry, attributes []domain.Attribute) error

	// UpdateEntryStatus transitions an entry's status (e.g. POSTED -> REVERSED).
	UpdateEntryStatus(ctx context.Context, organizationID, entryID string, status domain.EntryStatus, userID string) error
}

// LedgerRepositoryFacade combines ledger read and write interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}

// LedgerRepositoryWithTx extends LedgerRepositoryFacade with transaction capabilities.
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	TransactionManager
}
