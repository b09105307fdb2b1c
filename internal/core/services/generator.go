package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
)

// ResolvedAccounts carries the accounts a strategy posts to: the primary
// debit/credit pair from the winning mapping rule, plus any auxiliary
// component pairs (tax, withholding, cost of goods) the strategy asked for.
type ResolvedAccounts struct {
	Debit      domain.Account
	Credit     domain.Account
	Components map[string]domain.AccountPair
}

// LineStrategy generates the journal lines for one transaction category.
// Strategies are pure functions of the transaction and resolved accounts;
// new categories are added by registering a strategy, without touching the
// resolver or the balance validator.
type LineStrategy interface {
	// Category returns the transaction category this strategy serves.
	Category() domain.TransactionCategory

	// Components lists the auxiliary account pairs the strategy needs for
	// this particular transaction (e.g. "tax" only when tax was collected).
	Components(txn domain.BusinessTransaction) []string

	// Generate emits one or more entry drafts. Each draft must balance on
	// its own; most categories emit a single draft.
	Generate(txn domain.BusinessTransaction, accounts ResolvedAccounts) ([]domain.EntryDraft, error)
}

// StrategyRegistry is a lookup table of line strategies keyed by category.
type StrategyRegistry struct {
	strategies map[domain.TransactionCategory]LineStrategy
}

// NewStrategyRegistry creates a registry pre-populated with the built-in
// strategies for all known categories.
func NewStrategyRegistry() *StrategyRegistry {
	r := &StrategyRegistry{strategies: make(map[domain.TransactionCategory]LineStrategy)}
	r.Register(saleStrategy{})
	r.Register(payrollStrategy{})
	r.Register(simplePairStrategy{category: domain.CategoryPurchase, memo: "Purchase"})
	r.Register(simplePairStrategy{category: domain.CategoryPayment, memo: "Payment"})
	r.Register(simplePairStrategy{category: domain.CategoryReceipt, memo: "Receipt"})
	r.Register(simplePairStrategy{category: domain.CategoryExpense, memo: "Expense"})
	r.Register(simplePairStrategy{category: domain.CategoryInventoryAdjustment, memo: "Inventory adjustment"})
	return r
}

// Register adds or replaces the strategy for its category.
func (r *StrategyRegistry) Register(s LineStrategy) {
	r.strategies[s.Category()] = s
}

// StrategyFor returns the strategy registered for a category.
func (r *StrategyRegistry) StrategyFor(category domain.TransactionCategory) (LineStrategy, error) {
	s, ok := r.strategies[category]
	if !ok {
		return nil, fmt.Errorf("no line strategy registered for category %s", category)
	}
	return s, nil
}

// debitLine builds a debit posting line for the transaction.
func debitLine(txn domain.BusinessTransaction, account domain.Account, amount decimal.Decimal, description string) domain.JournalLine {
	return newLine(txn, account, amount, decimal.Zero, description)
}

// creditLine builds a credit posting line for the transaction.
func creditLine(txn domain.BusinessTransaction, account domain.Account, amount decimal.Decimal, description string) domain.JournalLine {
	return newLine(txn, account, decimal.Zero, amount, description)
}

func newLine(txn domain.BusinessTransaction, account domain.Account, debit, credit decimal.Decimal, description string) domain.JournalLine {
	return domain.JournalLine{
		LineID:          uuid.NewString(),
		OrganizationID:  txn.OrganizationID,
		AccountID:       account.AccountID,
		AccountCode:     account.Code,
		Debit:           debit,
		Credit:          credit,
		Description:     description,
		RelatedEntityID: txn.RelatedEntityID,
		AuditFields:     txn.AuditFields,
	}
}
