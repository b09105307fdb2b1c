package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openbooks/ledger_posting_app/internal/core/domain"
)

// simplePairStrategy posts the full amount against the rule's debit and
// credit accounts: exactly two lines. It covers every category without
// category-specific splits.
type simplePairStrategy struct {
	category domain.TransactionCategory
	memo     string
}

func (s simplePairStrategy) Category() domain.TransactionCategory { return s.category }

func (s simplePairStrategy) Components(domain.BusinessTransaction) []string { return nil }

func (s simplePairStrategy) Generate(txn domain.BusinessTransaction, accounts ResolvedAccounts) ([]domain.EntryDraft, error) {
	memo := txn.Description
	if memo == "" {
		memo = s.memo
	}
	return []domain.EntryDraft{{
		Memo: memo,
		Lines: []domain.JournalLine{
			debitLine(txn, accounts.Debit, txn.Amount, memo),
			creditLine(txn, accounts.Credit, txn.Amount, memo),
		},
	}}, nil
}

// saleStrategy debits the receivable/cash account for the full amount and
// splits the credit side between revenue and, when tax was collected, a tax
// payable account. When the detail reports a cost of goods it emits a second,
// independently balanced COGS entry.
type saleStrategy struct{}

func (saleStrategy) Category() domain.TransactionCategory { return domain.CategorySale }

func (saleStrategy) Components(txn domain.BusinessTransaction) []string {
	detail, ok := txn.Detail.(domain.SaleDetail)
	if !ok {
		return nil
	}
	var components []string
	if detail.TaxAmount.IsPositive() {
		components = append(components, domain.ComponentTax)
	}
	if detail.CostOfGoods.IsPositive() {
		components = append(components, domain.ComponentCostOfGoods)
	}
	return components
}

func (saleStrategy) Generate(txn domain.BusinessTransaction, accounts ResolvedAccounts) ([]domain.EntryDraft, error) {
	detail, ok := txn.Detail.(domain.SaleDetail)
	if !ok {
		return nil, fmt.Errorf("sale strategy received %T detail", txn.Detail)
	}

	memo := txn.Description
	if memo == "" {
		memo = "Sale"
	}

	revenue := txn.Amount.Sub(detail.TaxAmount)
	lines := []domain.JournalLine{
		debitLine(txn, accounts.Debit, txn.Amount, memo),
		creditLine(txn, accounts.Credit, revenue, memo),
	}
	if detail.TaxAmount.IsPositive() {
		taxPair, ok := accounts.Components[domain.ComponentTax]
		if !ok {
			return nil, fmt.Errorf("sale strategy missing resolved %s component", domain.ComponentTax)
		}
		lines = append(lines, creditLine(txn, taxPair.Credit, detail.TaxAmount, memo+" (tax)"))
	}

	drafts := []domain.EntryDraft{{Memo: memo, Lines: lines}}

	if detail.CostOfGoods.IsPositive() {
		cogsPair, ok := accounts.Components[domain.ComponentCostOfGoods]
		if !ok {
			return nil, fmt.Errorf("sale strategy missing resolved %s component", domain.ComponentCostOfGoods)
		}
		drafts = append(drafts, domain.EntryDraft{
			Tag:  "COGS",
			Memo: memo + " (cost of goods)",
			Lines: []domain.JournalLine{
				debitLine(txn, cogsPair.Debit, detail.CostOfGoods, memo+" (cost of goods)"),
				creditLine(txn, cogsPair.Credit, detail.CostOfGoods, memo+" (cost of goods)"),
			},
		})
	}

	return drafts, nil
}

// payrollStrategy debits gross pay expense and credits the payable/cash
// account for net pay; withheld taxes go to a withholding payable account so
// the three lines net to zero.
type payrollStrategy struct{}

func (payrollStrategy) Category() domain.TransactionCategory { return domain.CategoryPayroll }

func (payrollStrategy) Components(txn domain.BusinessTransaction) []string {
	detail, ok := txn.Detail.(domain.PayrollDetail)
	if !ok {
		return nil
	}
	if !detail.GrossPay.Equal(detail.NetPay) {
		return []string{domain.ComponentWithholding}
	}
	return nil
}

func (payrollStrategy) Generate(txn domain.BusinessTransaction, accounts ResolvedAccounts) ([]domain.EntryDraft, error) {
	detail, ok := txn.Detail.(domain.PayrollDetail)
	if !ok {
		return nil, fmt.Errorf("payroll strategy received %T detail", txn.Detail)
	}

	memo := txn.Description
	if memo == "" {
		memo = "Payroll"
	}

	lines := []domain.JournalLine{
		debitLine(txn, accounts.Debit, detail.GrossPay, memo),
		creditLine(txn, accounts.Credit, detail.NetPay, memo),
	}

	withheld := detail.GrossPay.Sub(detail.NetPay)
	if withheld.GreaterThan(decimal.Zero) {
		withholdingPair, ok := accounts.Components[domain.ComponentWithholding]
		if !ok {
			return nil, fmt.Errorf("payroll strategy missing resolved %s component", domain.ComponentWithholding)
		}
		lines = append(lines, creditLine(txn, withholdingPair.Credit, withheld, memo+" (withholding)"))
	}

	return []domain.EntryDraft{{Memo: memo, Lines: lines}}, nil
}
