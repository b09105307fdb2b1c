package models

// Organization is the tenant boundary row. Every other row carries its ID.
type Organization struct {
	OrganizationID string `db:"organization_id"`
	Name           string `db:"name"`
	IsActive       bool   `db:"is_active"`
	AuditFields
}
