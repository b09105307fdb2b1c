package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrMappingNotFound indicates that no account mapping rule matched a transaction.
var ErrMappingNotFound = errors.New("no matching account mapping rule")

// ErrUnknownAccount indicates a mapping rule referenced an account code that is
// missing, inactive, or belongs to a different organization.
var ErrUnknownAccount = errors.New("unknown or inactive account")

// ErrUnbalanced indicates that generated journal lines violate the double-entry invariant.
var ErrUnbalanced = errors.New("journal entry is not balanced")

// ErrStorage indicates a persistence failure; the attempted entry was rolled back in full.
var ErrStorage = errors.New("storage error")

// ErrLinkage indicates the post-commit back-reference write failed. The journal
// entry itself is durable and valid; only the linkage needs a retry.
var ErrLinkage = errors.New("linkage error")

// ErrTimeout indicates a bounded wait on an I/O step was exceeded.
var ErrTimeout = errors.New("operation timed out")

// ErrForbidden indicates the caller is not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// FieldViolation describes a single invalid input field.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError aggregates every violated field of an intake request,
// not just the first one found.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Reason
	}
	return fmt.Sprintf("%v: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add records a violation and returns the error for chaining.
func (e *ValidationError) Add(field, reason string) *ValidationError {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Reason: reason})
	return e
}

// HasViolations reports whether any field failed validation.
func (e *ValidationError) HasViolations() bool { return len(e.Violations) > 0 }

// MappingNotFoundError names the category and conditions for which no rule matched.
type MappingNotFoundError struct {
	Category   string
	Conditions map[string]string
}

func (e *MappingNotFoundError) Error() string {
	keys := make([]string, 0, len(e.Conditions))
	for k := range e.Conditions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + e.Conditions[k]
	}
	return fmt.Sprintf("%v: category %s, conditions [%s]", ErrMappingNotFound, e.Category, strings.Join(parts, " "))
}

func (e *MappingNotFoundError) Unwrap() error { return ErrMappingNotFound }

// UnknownAccountError identifies the offending account code and why it was rejected.
type UnknownAccountError struct {
	OrganizationID string
	AccountCode    string
	Reason         string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("%v: code %s (%s)", ErrUnknownAccount, e.AccountCode, e.Reason)
}

func (e *UnknownAccountError) Unwrap() error { return ErrUnknownAccount }

// UnbalancedEntryError carries both totals and the generating strategy for diagnosis.
type UnbalancedEntryError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Strategy    string
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("%v: debits %s, credits %s (strategy %s)",
		ErrUnbalanced, e.TotalDebit.String(), e.TotalCredit.String(), e.Strategy)
}

func (e *UnbalancedEntryError) Unwrap() error { return ErrUnbalanced }

// LinkageError reports a failed back-reference write for already-durable entries.
type LinkageError struct {
	TransactionID string
	EntryIDs      []string
	Err           error
}

func (e *LinkageError) Error() string {
	return fmt.Sprintf("%v: transaction %s, entries %v: %v", ErrLinkage, e.TransactionID, e.EntryIDs, e.Err)
}

func (e *LinkageError) Unwrap() error { return ErrLinkage }

// AppError wraps a lower-level error with an application status code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that unwraps to ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
