package dto

import "github.com/openbooks/ledger_posting_app/internal/core/domain"

// CreateAccountRequest adds an account to an organization's chart of accounts.
type CreateAccountRequest struct {
	Code        string             `json:"code" binding:"required"`
	Name        string             `json:"name" binding:"required"`
	AccountType domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Description string             `json:"description"`
}

// AccountResponse is the API representation of a chart-of-accounts entry.
type AccountResponse struct {
	AccountID      string             `json:"accountID"`
	OrganizationID string             `json:"organizationID"`
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	AccountType    domain.AccountType `json:"accountType"`
	Description    string             `json:"description"`
	IsActive       bool               `json:"isActive"`
}

// ToAccountResponse converts a domain account to its API representation.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      a.AccountID,
		OrganizationID: a.OrganizationID,
		Code:           a.Code,
		Name:           a.Name,
		AccountType:    a.AccountType,
		Description:    a.Description,
		IsActive:       a.IsActive,
	}
}

// ListAccountsResponse is a page of accounts plus the next-page token.
type ListAccountsResponse struct {
	Accounts  []AccountResponse `json:"accounts"`
	NextToken *string           `json:"nextToken,omitempty"`
}
