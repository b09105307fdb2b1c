package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	"github.com/openbooks/ledger_posting_app/internal/core/domain"
)

// balanceTolerance is one hundredth of the ledger's minor currency unit.
// Differences beyond it are never auto-corrected; a strategy that wants
// rounding correction must post an explicit line to a rounding account.
var balanceTolerance = decimal.New(1, -2)

// ValidateEntryBalance enforces the double-entry invariant on a generated set
// of lines before anything is persisted. It returns the debit and credit
// totals; on violation the error unwraps to apperrors.ErrUnbalanced and the
// entry must be discarded.
func ValidateEntryBalance(lines []domain.JournalLine, strategy string) (decimal.Decimal, decimal.Decimal, error) {
	if len(lines) < 2 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: entry has %d lines, need at least 2 (strategy %s)",
			apperrors.ErrUnbalanced, len(lines), strategy)
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: negative amount on line for account %s (strategy %s)",
				apperrors.ErrUnbalanced, line.AccountCode, strategy)
		}
		if line.Debit.IsPositive() == line.Credit.IsPositive() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: line for account %s must have exactly one of debit/credit set (strategy %s)",
				apperrors.ErrUnbalanced, line.AccountCode, strategy)
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}

	if totalDebit.Sub(totalCredit).Abs().GreaterThan(balanceTolerance) {
		return totalDebit, totalCredit, &apperrors.UnbalancedEntryError{
			TotalDebit:  totalDebit,
			TotalCredit: totalCredit,
			Strategy:    strategy,
		}
	}

	return totalDebit, totalCredit, nil
}
