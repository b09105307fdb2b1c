package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents a chart-of-accounts entry scoped to one organization.
// Codes are unique per organization, not globally.
type Account struct {
	AccountID      string      `json:"accountID"`      // Primary Key (UUID)
	OrganizationID string      `json:"organizationID"` // Tenant boundary (NON-NULL)
	Code           string      `json:"code"`           // Unique per organization
	Name           string      `json:"name"`
	AccountType    AccountType `json:"accountType"` // ASSET, LIABILITY, etc.
	Description    string      `json:"description"` // Nullable user description
	IsActive       bool        `json:"isActive"`    // Inactive accounts reject new postings
	AuditFields
}

// AccountPair is a resolved debit/credit account pair for a posting or one of
// its auxiliary components.
type AccountPair struct {
	Debit  Account
	Credit Account
}
