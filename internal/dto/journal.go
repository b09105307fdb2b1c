package dto

import (
	"time"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineResponse is the API representation of a single posting line.
type JournalLineResponse struct {
	LineID          string          `json:"lineID"`
	AccountID       string          `json:"accountID"`
	AccountCode     string          `json:"accountCode"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Description     string          `json:"description"`
	RelatedEntityID *string         `json:"relatedEntityID,omitempty"`
}

// JournalEntryResponse is the API representation of a posted journal entry.
type JournalEntryResponse struct {
	EntryID         string                `json:"entryID"`
	OrganizationID  string                `json:"organizationID"`
	TransactionID   string                `json:"transactionID"`
	ReferenceNumber string                `json:"referenceNumber"`
	EntryDate       time.Time             `json:"entryDate"`
	Description     string                `json:"description"`
	TotalDebit      decimal.Decimal       `json:"totalDebit"`
	TotalCredit     decimal.Decimal       `json:"totalCredit"`
	Balanced        bool                  `json:"balanced"`
	Classification  string                `json:"classification"`
	Status          domain.EntryStatus    `json:"status"`
	OriginalEntryID *string               `json:"originalEntryID,omitempty"`
	Lines           []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
}

// ListEntriesParams holds parameters for listing journal entries.
type ListEntriesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse is a page of journal entries plus the next-page token.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToJournalLineResponse converts a domain line to its API representation.
func ToJournalLineResponse(l domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:          l.LineID,
		AccountID:       l.AccountID,
		AccountCode:     l.AccountCode,
		Debit:           l.Debit,
		Credit:          l.Credit,
		Description:     l.Description,
		RelatedEntityID: l.RelatedEntityID,
	}
}

// ToJournalEntryResponse converts a domain entry (with lines) to its API representation.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = ToJournalLineResponse(l)
	}
	return JournalEntryResponse{
		EntryID:         e.EntryID,
		OrganizationID:  e.OrganizationID,
		TransactionID:   e.TransactionID,
		ReferenceNumber: e.ReferenceNumber,
		EntryDate:       e.EntryDate,
		Description:     e.Description,
		TotalDebit:      e.TotalDebit,
		TotalCredit:     e.TotalCredit,
		Balanced:        e.Balanced,
		Classification:  e.Classification.String(),
		Status:          e.Status,
		OriginalEntryID: e.OriginalEntryID,
		Lines:           lines,
		CreatedAt:       e.CreatedAt,
	}
}
