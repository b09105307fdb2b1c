package domain

// Organization is the tenant boundary. Every persisted ledger row carries an
// organization ID and must never be visible across tenants.
type Organization struct {
	OrganizationID string `json:"organizationID"` // Primary Key (UUID)
	Name           string `json:"name"`
	IsActive       bool   `json:"isActive"`
	AuditFields
}
