package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_posting_app/internal/core/ports/repositories"
	"github.com/openbooks/ledger_posting_app/internal/models"
	"github.com/openbooks/ledger_posting_app/internal/utils/mapping"
)

type PgxLinkageRepository struct {
	BaseRepository
}

// newPgxLinkageRepository creates a new repository for transaction-to-entry
// back-references and the linkage retry outbox.
func newPgxLinkageRepository(pool *pgxpool.Pool) portsrepo.LinkageRepository {
	return &PgxLinkageRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LinkageRepository = (*PgxLinkageRepository)(nil)

// RecordLinks writes the entry-ID back-reference onto the business
// transaction, marks it POSTED, and moves its entries to LINKED, all in one
// database transaction.
func (r *PgxLinkageRepository) RecordLinks(ctx context.Context, organizationID, transactionID string, entryIDs []string, userID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := time.Now().UTC()
	txnQuery := `
		UPDATE business_transactions
		SET entry_ids = $3, status = $4, last_updated_at = $5, last_updated_by = $6
		WHERE organization_id = $1 AND transaction_id = $2;
	`
	tag, err := tx.Exec(ctx, txnQuery, organizationID, transactionID, entryIDs, string(models.TxnPosted), now, userID)
	if err != nil {
		return fmt.Errorf("failed to link transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("business transaction %s not found", transactionID))
	}

	entryQuery := `
		UPDATE journal_entries
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE organization_id = $1 AND entry_id = ANY($2);
	`
	if _, err := tx.Exec(ctx, entryQuery, organizationID, entryIDs, string(models.EntryLinked), now, userID); err != nil {
		return fmt.Errorf("failed to mark entries linked for transaction %s: %w", transactionID, err)
	}

	return r.Commit(ctx, tx)
}

// EnqueuePending stores an outbox row for a failed linkage so it can be retried.
func (r *PgxLinkageRepository) EnqueuePending(ctx context.Context, pending domain.PendingLinkage) error {
	m := mapping.ToModelLinkageOutbox(pending)
	query := `
		INSERT INTO linkage_outbox (linkage_id, organization_id, transaction_id, entry_ids, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (transaction_id) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query, m.LinkageID, m.OrganizationID, m.TransactionID, m.EntryIDs, m.Attempts, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue pending linkage for transaction %s: %w", pending.TransactionID, err)
	}
	return nil
}

// ListPending retrieves outbox rows awaiting retry, oldest first.
func (r *PgxLinkageRepository) ListPending(ctx context.Context, limit int) ([]domain.PendingLinkage, error) {
	query := `
		SELECT linkage_id, organization_id, transaction_id, entry_ids, attempts, created_at
		FROM linkage_outbox
		ORDER BY created_at
		LIMIT $1;
	`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending linkages: %w", err)
	}
	defer rows.Close()

	var pending []domain.PendingLinkage
	for rows.Next() {
		var m models.LinkageOutbox
		if err := rows.Scan(&m.LinkageID, &m.OrganizationID, &m.TransactionID, &m.EntryIDs, &m.Attempts, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan linkage outbox row: %w", err)
		}
		pending = append(pending, mapping.ToDomainPendingLinkage(m))
	}
	return pending, rows.Err()
}

// MarkCompleted removes a successfully retried outbox row.
func (r *PgxLinkageRepository) MarkCompleted(ctx context.Context, linkageID string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM linkage_outbox WHERE linkage_id = $1;`, linkageID)
	if err != nil {
		return fmt.Errorf("failed to remove linkage outbox row %s: %w", linkageID, err)
	}
	return nil
}

// IncrementAttempts bumps the retry counter after a failed attempt.
func (r *PgxLinkageRepository) IncrementAttempts(ctx context.Context, linkageID string) error {
	_, err := r.Pool.Exec(ctx, `UPDATE linkage_outbox SET attempts = attempts + 1 WHERE linkage_id = $1;`, linkageID)
	if err != nil {
		return fmt.Errorf("failed to increment linkage attempts for %s: %w", linkageID, err)
	}
	return nil
}
