package models

// AccountType mirrors the five fundamental account classes.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents a single account row in an organization's chart of accounts.
type Account struct {
	AccountID      string      `db:"account_id"`
	OrganizationID string      `db:"organization_id"`
	Code           string      `db:"code"` // Unique per organization
	Name           string      `db:"name"`
	AccountType    AccountType `db:"account_type"`
	Description    string      `db:"description"`
	IsActive       bool        `db:"is_active"`
	AuditFields
}
