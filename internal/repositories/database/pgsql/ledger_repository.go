package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_posting_app/internal/core/ports/repositories"
	"github.com/openbooks/ledger_posting_app/internal/models"
	"github.com/openbooks/ledger_posting_app/internal/utils/mapping"
	"github.com/openbooks/ledger_posting_app/internal/utils/pagination"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for posted ledger data.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryWithTx {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

const entryColumns = `entry_id, organization_id, transaction_id, reference_number, entry_date, description, total_debit, total_credit, balanced, classification, status, original_entry_id, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, organization_id, account_id, account_code, debit, credit, description, related_entity_id, created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID, &m.OrganizationID, &m.TransactionID, &m.ReferenceNumber,
		&m.EntryDate, &m.Description, &m.TotalDebit, &m.TotalCredit,
		&m.Balanced, &m.Classification, &m.Status, &m.OriginalEntryID,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func scanLine(row pgx.Row) (models.JournalLine, error) {
	var m models.JournalLine
	err := row.Scan(
		&m.LineID, &m.EntryID, &m.OrganizationID, &m.AccountID, &m.AccountCode,
		&m.Debit, &m.Credit, &m.Description, &m.RelatedEntityID,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// SaveTransactionWithEntries persists the business transaction row, every
// entry header, every line, and every attribute row inside one database
// transaction. The idempotency key's partial unique index surfaces a replay
// as apperrors.ErrDuplicate.
func (r *PgxLedgerRepository) SaveTransactionWithEntries(ctx context.Context, txn domain.BusinessTransaction, entries []domain.JournalEntry, attributes []domain.Attribute) error {
	modelTxn, err := mapping.ToModelBusinessTransaction(txn)
	if err != nil {
		return fmt.Errorf("failed to serialize transaction detail: %w", err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	txnQuery := `
		INSERT INTO business_transactions (
			transaction_id, organization_id, category, amount, related_entity_id,
			detail, transaction_date, description, reference_number, idempotency_key,
			classification, status, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, txnQuery,
		modelTxn.TransactionID, modelTxn.OrganizationID, modelTxn.Category,
		modelTxn.Amount, modelTxn.RelatedEntityID, modelTxn.Detail,
		modelTxn.TransactionDate, modelTxn.Description, modelTxn.ReferenceNumber,
		modelTxn.IdempotencyKey, modelTxn.Classification, modelTxn.Status,
		modelTxn.CreatedAt, modelTxn.CreatedBy, modelTxn.LastUpdatedAt, modelTxn.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: idempotency key already used", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert business transaction %s: %w", txn.TransactionID, err)
	}

	batch := &pgx.Batch{}
	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	lineQuery := `
		INSERT INTO journal_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	attrQuery := `
		INSERT INTO entry_attributes (attribute_id, organization_id, entry_id, name, value, classification, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, entry := range entries {
		me := mapping.ToModelJournalEntry(entry)
		batch.Queue(entryQuery,
			me.EntryID, me.OrganizationID, me.TransactionID, me.ReferenceNumber,
			me.EntryDate, me.Description, me.TotalDebit, me.TotalCredit,
			me.Balanced, me.Classification, me.Status, me.OriginalEntryID,
			me.CreatedAt, me.CreatedBy, me.LastUpdatedAt, me.LastUpdatedBy,
		)
		for _, line := range entry.Lines {
			ml := mapping.ToModelJournalLine(line)
			batch.Queue(lineQuery,
				ml.LineID, ml.EntryID, ml.OrganizationID, ml.AccountID, ml.AccountCode,
				ml.Debit, ml.Credit, ml.Description, ml.RelatedEntityID,
				ml.CreatedAt, ml.CreatedBy, ml.LastUpdatedAt, ml.LastUpdatedBy,
			)
		}
	}
	for _, attr := range attributes {
		ma := mapping.ToModelEntryAttribute(attr)
		batch.Queue(attrQuery,
			ma.AttributeID, ma.OrganizationID, ma.EntryID, ma.Name, ma.Value,
			ma.Classification, ma.CreatedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, pgErr.ConstraintName)
			}
			return fmt.Errorf("failed to insert entry batch row %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close entry batch: %w", err)
	}

	return r.Commit(ctx, tx)
}

// FindEntryByID retrieves an entry header with its lines, scoped to the organization.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE organization_id = $1 AND entry_id = $2;`
	m, err := scanEntry(r.Pool.QueryRow(ctx, query, organizationID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("journal entry %s not found", entryID))
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}

	entry := mapping.ToDomainJournalEntry(m)
	lines, err := r.findLinesByEntryIDs(ctx, organizationID, []string{entryID})
	if err != nil {
		return nil, err
	}
	entry.Lines = lines[entryID]
	return &entry, nil
}

// FindEntriesByTransactionID retrieves every entry posted for a business transaction.
func (r *PgxLedgerRepository) FindEntriesByTransactionID(ctx context.Context, organizationID, transactionID string) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE organization_id = $1 AND transaction_id = $2
		ORDER BY created_at, entry_id;
	`
	return r.queryEntriesWithLines(ctx, organizationID, query, organizationID, transactionID)
}

// FindEntriesByIdempotencyKey retrieves the entries already posted under a
// caller-supplied idempotency key, or an empty slice if the key is unused.
func (r *PgxLedgerRepository) FindEntriesByIdempotencyKey(ctx context.Context, organizationID, idempotencyKey string) ([]domain.JournalEntry, error) {
	query := `
		SELECT je.entry_id, je.organization_id, je.transaction_id, je.reference_number,
		       je.entry_date, je.description, je.total_debit, je.total_credit,
		       je.balanced, je.classification, je.status, je.original_entry_id,
		       je.created_at, je.created_by, je.last_updated_at, je.last_updated_by
		FROM journal_entries je
		JOIN business_transactions bt ON bt.transaction_id = je.transaction_id
		WHERE bt.organization_id = $1 AND bt.idempotency_key = $2
		ORDER BY je.created_at, je.entry_id;
	`
	return r.queryEntriesWithLines(ctx, organizationID, query, organizationID, idempotencyKey)
}

// ListEntries retrieves a token-paginated list of the organization's entries,
// newest first, using the entry date and created-at cursor token.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := []any{organizationID}
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE organization_id = $1`

	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		query += ` AND (entry_date, created_at) < ($2, $3)`
		args = append(args, entryDate, createdAt)
	}
	query += fmt.Sprintf(` ORDER BY entry_date DESC, created_at DESC LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		entries = append(entries, mapping.ToDomainJournalEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var newToken *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		newToken = &token
		entries = entries[:limit]
	}

	entryIDs := make([]string, len(entries))
	for i := range entries {
		entryIDs[i] = entries[i].EntryID
	}
	linesByEntry, err := r.findLinesByEntryIDs(ctx, organizationID, entryIDs)
	if err != nil {
		return nil, nil, err
	}
	for i := range entries {
		entries[i].Lines = linesByEntry[entries[i].EntryID]
	}
	return entries, newToken, nil
}

// FindAttributesByEntryID retrieves the extensible attribute rows of an entry.
func (r *PgxLedgerRepository) FindAttributesByEntryID(ctx context.Context, organizationID, entryID string) ([]domain.Attribute, error) {
	query := `
		SELECT attribute_id, organization_id, entry_id, name, value, classification, created_at
		FROM entry_attributes
		WHERE organization_id = $1 AND entry_id = $2
		ORDER BY name;
	`
	rows, err := r.Pool.Query(ctx, query, organizationID, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entry attributes: %w", err)
	}
	defer rows.Close()

	var attrs []domain.Attribute
	for rows.Next() {
		var m models.EntryAttribute
		if err := rows.Scan(&m.AttributeID, &m.OrganizationID, &m.EntryID, &m.Name, &m.Value, &m.Classification, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry attribute row: %w", err)
		}
		attrs = append(attrs, mapping.ToDomainEntryAttribute(m))
	}
	return attrs, rows.Err()
}

// UpdateEntryStatus transitions an entry's status (e.g. POSTED -> REVERSED).
func (r *PgxLedgerRepository) UpdateEntryStatus(ctx context.Context, organizationID, entryID string, status domain.EntryStatus, userID string) error {
	query := `
		UPDATE journal_entries
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE organization_id = $1 AND entry_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, organizationID, entryID, string(status), time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update status of entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("journal entry %s not found", entryID))
	}
	return nil
}

func (r *PgxLedgerRepository) queryEntriesWithLines(ctx context.Context, organizationID, query string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		entries = append(entries, mapping.ToDomainJournalEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []domain.JournalEntry{}, nil
	}

	entryIDs := make([]string, len(entries))
	for i := range entries {
		entryIDs[i] = entries[i].EntryID
	}
	linesByEntry, err := r.findLinesByEntryIDs(ctx, organizationID, entryIDs)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = linesByEntry[entries[i].EntryID]
	}
	return entries, nil
}

func (r *PgxLedgerRepository) findLinesByEntryIDs(ctx context.Context, organizationID string, entryIDs []string) (map[string][]domain.JournalLine, error) {
	if len(entryIDs) == 0 {
		return map[string][]domain.JournalLine{}, nil
	}
	query := `
		SELECT ` + lineColumns + `
		FROM journal_lines
		WHERE organization_id = $1 AND entry_id = ANY($2)
		ORDER BY entry_id, line_id;
	`
	rows, err := r.Pool.Query(ctx, query, organizationID, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.JournalLine, len(entryIDs))
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal line row: %w", err)
		}
		result[m.EntryID] = append(result[m.EntryID], mapping.ToDomainJournalLine(m))
	}
	return result, rows.Err()
}
