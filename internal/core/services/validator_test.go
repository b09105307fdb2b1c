package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	"github.com/openbooks/ledger_posting_app/internal/core/services"
)

func debit(code string, amount string) domain.JournalLine {
	return domain.JournalLine{AccountCode: code, Debit: decimal.RequireFromString(amount), Credit: decimal.Zero}
}

func credit(code string, amount string) domain.JournalLine {
	return domain.JournalLine{AccountCode: code, Debit: decimal.Zero, Credit: decimal.RequireFromString(amount)}
}

func TestValidateEntryBalanceHappyPath(t *testing.T) {
	lines := []domain.JournalLine{
		debit("CASH", "100"),
		credit("REVENUE", "90"),
		credit("TAX_PAYABLE", "10"),
	}

	totalDebit, totalCredit, err := services.ValidateEntryBalance(lines, "sale")
	require.NoError(t, err)
	assert.True(t, totalDebit.Equal(decimal.NewFromInt(100)))
	assert.True(t, totalCredit.Equal(decimal.NewFromInt(100)))
}

func TestValidateEntryBalanceWithinTolerance(t *testing.T) {
	// 0.01 difference is within tolerance and is NOT silently corrected:
	// the totals come back as-is.
	lines := []domain.JournalLine{
		debit("CASH", "100.00"),
		credit("REVENUE", "99.99"),
	}

	totalDebit, totalCredit, err := services.ValidateEntryBalance(lines, "sale")
	require.NoError(t, err)
	assert.False(t, totalDebit.Equal(totalCredit), "Totals must be preserved, not rounded into balance")
	assert.True(t, totalCredit.Equal(decimal.RequireFromString("99.99")))
}

func TestValidateEntryBalanceBeyondTolerance(t *testing.T) {
	lines := []domain.JournalLine{
		debit("CASH", "100.00"),
		credit("REVENUE", "99.98"),
	}

	_, _, err := services.ValidateEntryBalance(lines, "sale")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnbalanced)

	var uerr *apperrors.UnbalancedEntryError
	require.ErrorAs(t, err, &uerr)
	assert.True(t, uerr.TotalDebit.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, uerr.TotalCredit.Equal(decimal.RequireFromString("99.98")))
	assert.Equal(t, "sale", uerr.Strategy)
}

func TestValidateEntryBalanceRequiresTwoLines(t *testing.T) {
	_, _, err := services.ValidateEntryBalance([]domain.JournalLine{debit("CASH", "100")}, "sale")
	assert.ErrorIs(t, err, apperrors.ErrUnbalanced)

	_, _, err = services.ValidateEntryBalance(nil, "sale")
	assert.ErrorIs(t, err, apperrors.ErrUnbalanced)
}

func TestValidateEntryBalanceRejectsNegativeAmounts(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountCode: "CASH", Debit: decimal.NewFromInt(-100), Credit: decimal.Zero},
		credit("REVENUE", "100"),
	}
	_, _, err := services.ValidateEntryBalance(lines, "sale")
	assert.ErrorIs(t, err, apperrors.ErrUnbalanced)
}

func TestValidateEntryBalanceRejectsBothSidesSet(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountCode: "CASH", Debit: decimal.NewFromInt(50), Credit: decimal.NewFromInt(50)},
		credit("REVENUE", "0"),
	}
	_, _, err := services.ValidateEntryBalance(lines, "sale")
	assert.ErrorIs(t, err, apperrors.ErrUnbalanced)
}

func TestValidateEntryBalanceRejectsEmptyLine(t *testing.T) {
	lines := []domain.JournalLine{
		debit("CASH", "100"),
		{AccountCode: "REVENUE", Debit: decimal.Zero, Credit: decimal.Zero},
	}
	_, _, err := services.ValidateEntryBalance(lines, "sale")
	assert.ErrorIs(t, err, apperrors.ErrUnbalanced, "A line with neither side set is invalid")
}
