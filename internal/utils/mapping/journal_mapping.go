package mapping

import (
	"encoding/json"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	"github.com/openbooks/ledger_posting_app/internal/models"
)

// ToModelBusinessTransaction converts a domain BusinessTransaction to its model form.
// The typed detail variant is serialized into the JSONB column.
func ToModelBusinessTransaction(d domain.BusinessTransaction) (models.BusinessTransaction, error) {
	detail := []byte("{}")
	if d.Detail != nil {
		raw, err := json.Marshal(d.Detail)
		if err != nil {
			return models.BusinessTransaction{}, err
		}
		detail = raw
	}
	return models.BusinessTransaction{
		TransactionID:   d.TransactionID,
		OrganizationID:  d.OrganizationID,
		Category:        string(d.Category),
		Amount:          d.Amount,
		RelatedEntityID: d.RelatedEntityID,
		Detail:          detail,
		TransactionDate: d.TransactionDate,
		Description:     d.Description,
		ReferenceNumber: d.ReferenceNumber,
		IdempotencyKey:  d.IdempotencyKey,
		Classification:  d.Classification.String(),
		Status:          models.TransactionStatus(d.Status),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToModelJournalEntry converts a domain JournalEntry header to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:         d.EntryID,
		OrganizationID:  d.OrganizationID,
		TransactionID:   d.TransactionID,
		ReferenceNumber: d.ReferenceNumber,
		EntryDate:       d.EntryDate,
		Description:     d.Description,
		TotalDebit:      d.TotalDebit,
		TotalCredit:     d.TotalCredit,
		Balanced:        d.Balanced,
		Classification:  d.Classification.String(),
		Status:          models.EntryStatus(d.Status),
		OriginalEntryID: d.OriginalEntryID,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry.
// Lines are attached separately by the repository.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:         m.EntryID,
		OrganizationID:  m.OrganizationID,
		TransactionID:   m.TransactionID,
		ReferenceNumber: m.ReferenceNumber,
		EntryDate:       m.EntryDate,
		Description:     m.Description,
		TotalDebit:      m.TotalDebit,
		TotalCredit:     m.TotalCredit,
		Balanced:        m.Balanced,
		Classification:  domain.ParseClassification(m.Classification),
		Status:          domain.EntryStatus(m.Status),
		OriginalEntryID: m.OriginalEntryID,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:          d.LineID,
		EntryID:         d.EntryID,
		OrganizationID:  d.OrganizationID,
		AccountID:       d.AccountID,
		AccountCode:     d.AccountCode,
		Debit:           d.Debit,
		Credit:          d.Credit,
		Description:     d.Description,
		RelatedEntityID: d.RelatedEntityID,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:          m.LineID,
		EntryID:         m.EntryID,
		OrganizationID:  m.OrganizationID,
		AccountID:       m.AccountID,
		AccountCode:     m.AccountCode,
		Debit:           m.Debit,
		Credit:          m.Credit,
		Description:     m.Description,
		RelatedEntityID: m.RelatedEntityID,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalLineSlice converts a slice of model JournalLines to domain JournalLines
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}

// ToModelEntryAttribute converts a domain Attribute to a model EntryAttribute
func ToModelEntryAttribute(d domain.Attribute) models.EntryAttribute {
	return models.EntryAttribute{
		AttributeID:    d.AttributeID,
		OrganizationID: d.OrganizationID,
		EntryID:        d.EntryID,
		Name:           d.Name,
		Value:          d.Value,
		Classification: d.Classification,
		CreatedAt:      d.CreatedAt,
	}
}

// ToDomainEntryAttribute converts a model EntryAttribute to a domain Attribute
func ToDomainEntryAttribute(m models.EntryAttribute) domain.Attribute {
	return domain.Attribute{
		AttributeID:    m.AttributeID,
		OrganizationID: m.OrganizationID,
		EntryID:        m.EntryID,
		Name:           m.Name,
		Value:          m.Value,
		Classification: m.Classification,
		CreatedAt:      m.CreatedAt,
	}
}

// ToModelLinkageOutbox converts a domain PendingLinkage to a model LinkageOutbox
func ToModelLinkageOutbox(d domain.PendingLinkage) models.LinkageOutbox {
	return models.LinkageOutbox{
		LinkageID:      d.LinkageID,
		OrganizationID: d.OrganizationID,
		TransactionID:  d.TransactionID,
		EntryIDs:       d.EntryIDs,
		Attempts:       d.Attempts,
		CreatedAt:      d.CreatedAt,
	}
}

// ToDomainPendingLinkage converts a model LinkageOutbox to a domain PendingLinkage
func ToDomainPendingLinkage(m models.LinkageOutbox) domain.PendingLinkage {
	return domain.PendingLinkage{
		LinkageID:      m.LinkageID,
		OrganizationID: m.OrganizationID,
		TransactionID:  m.TransactionID,
		EntryIDs:       m.EntryIDs,
		Attempts:       m.Attempts,
		CreatedAt:      m.CreatedAt,
	}
}
