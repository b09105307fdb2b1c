package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	"github.com/openbooks/ledger_posting_app/internal/core/services"
)

func account(id, code string, accountType domain.AccountType) domain.Account {
	return domain.Account{AccountID: id, OrganizationID: "org-1", Code: code, AccountType: accountType, IsActive: true}
}

func saleTxn(amount, tax, cogs int64) domain.BusinessTransaction {
	return domain.BusinessTransaction{
		TransactionID:  "txn-1",
		OrganizationID: "org-1",
		Category:       domain.CategorySale,
		Amount:         decimal.NewFromInt(amount),
		Detail: domain.SaleDetail{
			PaymentMethod: "cash",
			TaxAmount:     decimal.NewFromInt(tax),
			CostOfGoods:   decimal.NewFromInt(cogs),
		},
	}
}

func lineFor(t *testing.T, lines []domain.JournalLine, code string) domain.JournalLine {
	t.Helper()
	for _, l := range lines {
		if l.AccountCode == code {
			return l
		}
	}
	t.Fatalf("no line for account %s", code)
	return domain.JournalLine{}
}

func TestSaleStrategyWithTax(t *testing.T) {
	registry := services.NewStrategyRegistry()
	strategy, err := registry.StrategyFor(domain.CategorySale)
	require.NoError(t, err)

	txn := saleTxn(100, 10, 0)
	assert.Equal(t, []string{domain.ComponentTax}, strategy.Components(txn))

	accounts := services.ResolvedAccounts{
		Debit:  account("acc-cash", "CASH", domain.Asset),
		Credit: account("acc-rev", "REVENUE", domain.Revenue),
		Components: map[string]domain.AccountPair{
			domain.ComponentTax: {
				Debit:  account("acc-rev", "REVENUE", domain.Revenue),
				Credit: account("acc-tax", "TAX_PAYABLE", domain.Liability),
			},
		},
	}

	drafts, err := strategy.Generate(txn, accounts)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	require.Len(t, drafts[0].Lines, 3)

	// Debit cash 100; credit revenue 90; credit tax payable 10.
	assert.True(t, lineFor(t, drafts[0].Lines, "CASH").Debit.Equal(decimal.NewFromInt(100)))
	assert.True(t, lineFor(t, drafts[0].Lines, "REVENUE").Credit.Equal(decimal.NewFromInt(90)))
	assert.True(t, lineFor(t, drafts[0].Lines, "TAX_PAYABLE").Credit.Equal(decimal.NewFromInt(10)))
}

func TestSaleStrategyEmitsSeparateCogsEntry(t *testing.T) {
	registry := services.NewStrategyRegistry()
	strategy, err := registry.StrategyFor(domain.CategorySale)
	require.NoError(t, err)

	txn := saleTxn(100, 0, 60)
	assert.Equal(t, []string{domain.ComponentCostOfGoods}, strategy.Components(txn))

	accounts := services.ResolvedAccounts{
		Debit:  account("acc-cash", "CASH", domain.Asset),
		Credit: account("acc-rev", "REVENUE", domain.Revenue),
		Components: map[string]domain.AccountPair{
			domain.ComponentCostOfGoods: {
				Debit:  account("acc-cogs", "COGS", domain.Expense),
				Credit: account("acc-inv", "INVENTORY", domain.Asset),
			},
		},
	}

	drafts, err := strategy.Generate(txn, accounts)
	require.NoError(t, err)
	require.Len(t, drafts, 2, "Cost of goods produces a second entry")

	assert.Equal(t, "COGS", drafts[1].Tag)
	require.Len(t, drafts[1].Lines, 2)
	assert.True(t, lineFor(t, drafts[1].Lines, "COGS").Debit.Equal(decimal.NewFromInt(60)))
	assert.True(t, lineFor(t, drafts[1].Lines, "INVENTORY").Credit.Equal(decimal.NewFromInt(60)))

	// Both drafts balance independently.
	for _, draft := range drafts {
		_, _, err := services.ValidateEntryBalance(draft.Lines, "sale")
		assert.NoError(t, err)
	}
}

func TestSimplePairStrategy(t *testing.T) {
	registry := services.NewStrategyRegistry()
	strategy, err := registry.StrategyFor(domain.CategoryPurchase)
	require.NoError(t, err)

	txn := domain.BusinessTransaction{
		TransactionID:  "txn-2",
		OrganizationID: "org-1",
		Category:       domain.CategoryPurchase,
		Amount:         decimal.NewFromInt(500),
		Detail:         domain.PurchaseDetail{PaymentMethod: "credit"},
	}
	assert.Empty(t, strategy.Components(txn))

	accounts := services.ResolvedAccounts{
		Debit:  account("acc-inv", "INVENTORY", domain.Asset),
		Credit: account("acc-ap", "ACCOUNTS_PAYABLE", domain.Liability),
	}

	drafts, err := strategy.Generate(txn, accounts)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	require.Len(t, drafts[0].Lines, 2)
	assert.True(t, lineFor(t, drafts[0].Lines, "INVENTORY").Debit.Equal(decimal.NewFromInt(500)))
	assert.True(t, lineFor(t, drafts[0].Lines, "ACCOUNTS_PAYABLE").Credit.Equal(decimal.NewFromInt(500)))
}

func TestPayrollStrategyWithholding(t *testing.T) {
	registry := services.NewStrategyRegistry()
	strategy, err := registry.StrategyFor(domain.CategoryPayroll)
	require.NoError(t, err)

	txn := domain.BusinessTransaction{
		TransactionID:  "txn-3",
		OrganizationID: "org-1",
		Category:       domain.CategoryPayroll,
		Amount:         decimal.NewFromInt(1000),
		Detail: domain.PayrollDetail{
			GrossPay: decimal.NewFromInt(1000),
			NetPay:   decimal.NewFromInt(780),
		},
	}
	assert.Equal(t, []string{domain.ComponentWithholding}, strategy.Components(txn))

	accounts := services.ResolvedAccounts{
		Debit:  account("acc-payroll", "PAYROLL_EXPENSE", domain.Expense),
		Credit: account("acc-cash", "CASH", domain.Asset),
		Components: map[string]domain.AccountPair{
			domain.ComponentWithholding: {
				Debit:  account("acc-payroll", "PAYROLL_EXPENSE", domain.Expense),
				Credit: account("acc-wh", "WITHHOLDING_PAYABLE", domain.Liability),
			},
		},
	}

	drafts, err := strategy.Generate(txn, accounts)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	require.Len(t, drafts[0].Lines, 3)

	assert.True(t, lineFor(t, drafts[0].Lines, "PAYROLL_EXPENSE").Debit.Equal(decimal.NewFromInt(1000)))
	assert.True(t, lineFor(t, drafts[0].Lines, "CASH").Credit.Equal(decimal.NewFromInt(780)))
	assert.True(t, lineFor(t, drafts[0].Lines, "WITHHOLDING_PAYABLE").Credit.Equal(decimal.NewFromInt(220)))

	_, _, err = services.ValidateEntryBalance(drafts[0].Lines, "payroll")
	assert.NoError(t, err)
}

type donationStrategy struct{}

func (donationStrategy) Category() domain.TransactionCategory { return domain.TransactionCategory("DONATION") }

func (donationStrategy) Components(domain.BusinessTransaction) []string { return nil }

func (donationStrategy) Generate(txn domain.BusinessTransaction, accounts services.ResolvedAccounts) ([]domain.EntryDraft, error) {
	return []domain.EntryDraft{{Memo: "Donation"}}, nil
}

func TestRegistryIsOpenForExtension(t *testing.T) {
	registry := services.NewStrategyRegistry()

	_, err := registry.StrategyFor(domain.TransactionCategory("DONATION"))
	require.Error(t, err, "Unknown category should have no strategy")

	registry.Register(donationStrategy{})
	strategy, err := registry.StrategyFor(domain.TransactionCategory("DONATION"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionCategory("DONATION"), strategy.Category())
}
