package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus is the persisted lifecycle state of a journal entry.
type EntryStatus string

const (
	EntryDraft    EntryStatus = "DRAFT"
	EntryBalanced EntryStatus = "BALANCED"
	EntryPosted   EntryStatus = "POSTED"
	EntryLinked   EntryStatus = "LINKED"
	EntryReversed EntryStatus = "REVERSED"
)

// JournalEntry is a posted entry header row.
type JournalEntry struct {
	EntryID         string          `db:"entry_id"`
	OrganizationID  string          `db:"organization_id"`
	TransactionID   string          `db:"transaction_id"`
	ReferenceNumber string          `db:"reference_number"`
	EntryDate       time.Time       `db:"entry_date"`
	Description     string          `db:"description"`
	TotalDebit      decimal.Decimal `db:"total_debit"`
	TotalCredit     decimal.Decimal `db:"total_credit"`
	Balanced        bool            `db:"balanced"`
	Classification  string          `db:"classification"`
	Status          EntryStatus     `db:"status"`
	OriginalEntryID *string         `db:"original_entry_id"` // Set on reversal entries
	AuditFields
}

// JournalLine is a single debit or credit posting row.
type JournalLine struct {
	LineID          string          `db:"line_id"`
	EntryID         string          `db:"entry_id"`
	OrganizationID  string          `db:"organization_id"`
	AccountID       string          `db:"account_id"`
	AccountCode     string          `db:"account_code"`
	Debit           decimal.Decimal `db:"debit"`
	Credit          decimal.Decimal `db:"credit"`
	Description     string          `db:"description"`
	RelatedEntityID *string         `db:"related_entity_id"`
	AuditFields
}

// EntryAttribute is an extensible name/value row on an entry header.
type EntryAttribute struct {
	AttributeID    string    `db:"attribute_id"`
	OrganizationID string    `db:"organization_id"`
	EntryID        string    `db:"entry_id"`
	Name           string    `db:"name"`
	Value          string    `db:"value"`
	Classification string    `db:"classification"`
	CreatedAt      time.Time `db:"created_at"`
}

// LinkageOutbox is a pending back-reference write awaiting retry.
type LinkageOutbox struct {
	LinkageID      string    `db:"linkage_id"`
	OrganizationID string    `db:"organization_id"`
	TransactionID  string    `db:"transaction_id"`
	EntryIDs       []string  `db:"entry_ids"`
	Attempts       int       `db:"attempts"`
	CreatedAt      time.Time `db:"created_at"`
}
