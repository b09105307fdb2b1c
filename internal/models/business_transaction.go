package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus indicates whether a business transaction's entries are posted.
type TransactionStatus string

const (
	TxnPending TransactionStatus = "PENDING"
	TxnPosted  TransactionStatus = "POSTED"
)

// BusinessTransaction is the persisted source business event. Detail holds
// the category-specific payload as JSONB; EntryIDs is the post-commit
// back-reference filled in by linkage.
type BusinessTransaction struct {
	TransactionID   string            `db:"transaction_id"`
	OrganizationID  string            `db:"organization_id"`
	Category        string            `db:"category"`
	Amount          decimal.Decimal   `db:"amount"`
	RelatedEntityID *string           `db:"related_entity_id"`
	Detail          []byte            `db:"detail"` // JSONB column
	TransactionDate time.Time         `db:"transaction_date"`
	Description     string            `db:"description"`
	ReferenceNumber string            `db:"reference_number"`
	IdempotencyKey  *string           `db:"idempotency_key"` // Unique per organization when set
	Classification  string            `db:"classification"`
	Status          TransactionStatus `db:"status"`
	EntryIDs        []string          `db:"entry_ids"` // Back-reference, written by linkage
	AuditFields
}
