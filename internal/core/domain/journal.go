package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus is the lifecycle state of a journal entry.
//
// Draft -> Balanced -> Posted -> Linked. Any failure before Posted aborts with
// no persisted side effects. A failure after Posted leaves a Posted-but-unlinked
// entry, a documented and intentional inconsistency window recovered by the
// linkage outbox.
type EntryStatus string

const (
	EntryStatusDraft EntryStatus = "DRAFT"
	EntryBalanced    EntryStatus = "BALANCED"
	EntryPosted      EntryStatus = "POSTED"
	EntryLinked      EntryStatus = "LINKED"
	EntryReversed    EntryStatus = "REVERSED"
)

// JournalEntry is a balanced set of debit/credit postings recorded as one
// atomic unit. Entries are never updated after posting; corrections are new
// compensating entries referencing the original.
type JournalEntry struct {
	EntryID         string          `json:"entryID"`        // Primary Key (UUID)
	OrganizationID  string          `json:"organizationID"` // Tenant boundary (NON-NULL)
	TransactionID   string          `json:"transactionID"`  // Originating BusinessTransaction
	ReferenceNumber string          `json:"referenceNumber"`
	EntryDate       time.Time       `json:"entryDate"`
	Description     string          `json:"description"`
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
	Balanced        bool            `json:"balanced"`
	Classification  Classification  `json:"classification"`
	Status          EntryStatus     `json:"status"`
	OriginalEntryID *string         `json:"originalEntryID,omitempty"` // Set on reversal entries
	Lines           []JournalLine   `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is a single debit or credit posting belonging to exactly one
// journal entry. Exactly one of Debit/Credit is non-zero.
type JournalLine struct {
	LineID          string          `json:"lineID"`  // Primary Key (UUID)
	EntryID         string          `json:"entryID"` // FK -> JournalEntry (Not Null)
	OrganizationID  string          `json:"organizationID"`
	AccountID       string          `json:"accountID"`
	AccountCode     string          `json:"accountCode"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Description     string          `json:"description"`
	RelatedEntityID *string         `json:"relatedEntityID,omitempty"`
	AuditFields
}

// EntryDraft is a generator's output before validation: a set of lines plus a
// tag distinguishing multi-entry postings (e.g. the COGS entry of a sale).
type EntryDraft struct {
	Tag   string // empty for the primary entry
	Memo  string
	Lines []JournalLine
}

// Attribute is an extensible name/value row attached to a journal entry
// header. New attributes require no schema migration; every row carries the
// organization ID and classification tag for tenant-scoped querying.
type Attribute struct {
	AttributeID    string    `json:"attributeID"`
	OrganizationID string    `json:"organizationID"`
	EntryID        string    `json:"entryID"`
	Name           string    `json:"name"`
	Value          string    `json:"value"`
	Classification string    `json:"classification"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PendingLinkage is an outbox row for a back-reference write that failed after
// its journal entries were durably posted.
type PendingLinkage struct {
	LinkageID      string    `json:"linkageID"`
	OrganizationID string    `json:"organizationID"`
	TransactionID  string    `json:"transactionID"`
	EntryIDs       []string  `json:"entryIDs"`
	Attempts       int       `json:"attempts"`
	CreatedAt      time.Time `json:"createdAt"`
}
