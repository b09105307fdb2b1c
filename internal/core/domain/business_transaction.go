package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus tracks whether a business transaction has been posted.
type TransactionStatus string

const (
	TxnPending TransactionStatus = "PENDING"
	TxnPosted  TransactionStatus = "POSTED"
)

// BusinessTransaction is the canonical internal form of an incoming business
// event. It is immutable once posted; corrections are new compensating
// journal entries, never in-place edits.
type BusinessTransaction struct {
	TransactionID   string              `json:"transactionID"`  // Primary Key (UUID)
	OrganizationID  string              `json:"organizationID"` // Tenant boundary (NON-NULL)
	Category        TransactionCategory `json:"category"`
	Amount          decimal.Decimal     `json:"amount"` // Positive total amount
	RelatedEntityID *string             `json:"relatedEntityID,omitempty"`
	Detail          TransactionDetail   `json:"detail"` // Category-tagged variant
	TransactionDate time.Time           `json:"transactionDate"`
	Description     string              `json:"description"`
	ReferenceNumber string              `json:"referenceNumber"` // Normalized at intake when absent
	IdempotencyKey  *string             `json:"idempotencyKey,omitempty"`
	Classification  Classification      `json:"classification"`
	Status          TransactionStatus   `json:"status"`
	Metadata        map[string]string   `json:"metadata,omitempty"` // Free-form, non-business-critical
	AuditFields
}
