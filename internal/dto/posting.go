package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PostTransactionRequest is the input contract of the posting engine: one
// business event with a category-tagged detail payload. The detail is parsed
// into its typed variant at intake based on Category.
type PostTransactionRequest struct {
	Category        string            `json:"category" binding:"required"`
	Amount          decimal.Decimal   `json:"amount" binding:"required"`
	TransactionDate time.Time         `json:"transactionDate" binding:"required"`
	Description     string            `json:"description"`
	ReferenceNumber *string           `json:"referenceNumber,omitempty"`
	IdempotencyKey  *string           `json:"idempotencyKey,omitempty"`
	RelatedEntityID *string           `json:"relatedEntityID,omitempty"`
	Detail          json.RawMessage   `json:"detail" binding:"required"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// PostingResult is the success side of the output contract: the posted
// entries with their totals and linkage state.
type PostingResult struct {
	TransactionID   string                 `json:"transactionID"`
	ReferenceNumber string                 `json:"referenceNumber"`
	Classification  string                 `json:"classification"`
	Entries         []JournalEntryResponse `json:"entries"`
	Linked          bool                   `json:"linked"`
	AlreadyPosted   bool                   `json:"alreadyPosted"`
}
