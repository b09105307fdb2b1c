package services_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	"github.com/openbooks/ledger_posting_app/internal/core/services"
	"github.com/openbooks/ledger_posting_app/internal/dto"
)

var fixedClock = func() time.Time {
	return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
}

func saleRequest() dto.PostTransactionRequest {
	return dto.PostTransactionRequest{
		Category:        "SALE",
		Amount:          decimal.NewFromInt(100),
		TransactionDate: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		Description:     "Walk-in sale",
		Detail:          json.RawMessage(`{"paymentMethod": "cash", "taxAmount": "10"}`),
	}
}

func TestNormalizeValidSale(t *testing.T) {
	intake := services.NewIntake(fixedClock)

	txn, err := intake.Normalize("org-1", saleRequest(), "user-1")
	require.NoError(t, err)

	assert.NotEmpty(t, txn.TransactionID)
	assert.Equal(t, "org-1", txn.OrganizationID)
	assert.Equal(t, domain.CategorySale, txn.Category)
	assert.Equal(t, "gl/posting/sale/v1", txn.Classification.String())
	assert.Equal(t, domain.TxnPending, txn.Status)
	assert.Equal(t, fixedClock(), txn.CreatedAt)
	assert.Equal(t, "user-1", txn.CreatedBy)

	detail, ok := txn.Detail.(domain.SaleDetail)
	require.True(t, ok, "Detail should be parsed into the sale variant")
	assert.Equal(t, "cash", detail.PaymentMethod)
	assert.True(t, detail.TaxAmount.Equal(decimal.NewFromInt(10)))
}

func TestNormalizeLowercaseCategory(t *testing.T) {
	intake := services.NewIntake(fixedClock)
	req := saleRequest()
	req.Category = "sale"

	txn, err := intake.Normalize("org-1", req, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CategorySale, txn.Category)
}

func TestNormalizeGeneratesReference(t *testing.T) {
	intake := services.NewIntake(fixedClock)

	txn, err := intake.Normalize("org-1", saleRequest(), "user-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(txn.ReferenceNumber, "SAL-"), "Generated reference should carry the category prefix, got %s", txn.ReferenceNumber)

	// A caller-supplied reference is preserved verbatim.
	ref := "INV-2025-001"
	req := saleRequest()
	req.ReferenceNumber = &ref
	txn, err = intake.Normalize("org-1", req, "user-1")
	require.NoError(t, err)
	assert.Equal(t, ref, txn.ReferenceNumber)
}

func TestNormalizeAggregatesViolations(t *testing.T) {
	intake := services.NewIntake(fixedClock)

	req := dto.PostTransactionRequest{
		Category: "TELEPORT",
		Amount:   decimal.NewFromInt(-5),
	}

	_, err := intake.Normalize("", req, "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, len(verr.Violations))
	for i, v := range verr.Violations {
		fields[i] = v.Field
	}
	// Every problem is reported in one pass, not just the first.
	assert.Contains(t, fields, "organizationID")
	assert.Contains(t, fields, "category")
	assert.Contains(t, fields, "amount")
	assert.Contains(t, fields, "transactionDate")
}

func TestNormalizeRejectsDetailMismatch(t *testing.T) {
	intake := services.NewIntake(fixedClock)

	req := saleRequest()
	req.Detail = json.RawMessage(`{"grossPay": "100", "netPay": "80"}`)

	_, err := intake.Normalize("org-1", req, "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "A payroll-shaped detail on a sale must be rejected")
}

func TestNormalizeRejectsMissingDetail(t *testing.T) {
	intake := services.NewIntake(fixedClock)

	req := saleRequest()
	req.Detail = nil

	_, err := intake.Normalize("org-1", req, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestNormalizeRejectsTaxExceedingAmount(t *testing.T) {
	intake := services.NewIntake(fixedClock)

	req := saleRequest()
	req.Detail = json.RawMessage(`{"paymentMethod": "cash", "taxAmount": "150"}`)

	_, err := intake.Normalize("org-1", req, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestNormalizePayrollAmountMustEqualGross(t *testing.T) {
	intake := services.NewIntake(fixedClock)

	req := dto.PostTransactionRequest{
		Category:        "PAYROLL",
		Amount:          decimal.NewFromInt(999),
		TransactionDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Detail:          json.RawMessage(`{"grossPay": "1000", "netPay": "780"}`),
	}

	_, err := intake.Normalize("org-1", req, "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	req.Amount = decimal.NewFromInt(1000)
	txn, err := intake.Normalize("org-1", req, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryPayroll, txn.Category)
}

func TestNormalizeRejectsNetExceedingGross(t *testing.T) {
	intake := services.NewIntake(fixedClock)

	req := dto.PostTransactionRequest{
		Category:        "PAYROLL",
		Amount:          decimal.NewFromInt(1000),
		TransactionDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Detail:          json.RawMessage(`{"grossPay": "1000", "netPay": "1100"}`),
	}

	_, err := intake.Normalize("org-1", req, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestNormalizeRejectsInvalidAdjustmentType(t *testing.T) {
	intake := services.NewIntake(fixedClock)

	req := dto.PostTransactionRequest{
		Category:        "INVENTORY_ADJUSTMENT",
		Amount:          decimal.NewFromInt(50),
		TransactionDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Detail:          json.RawMessage(`{"adjustmentType": "GUESSWORK"}`),
	}

	_, err := intake.Normalize("org-1", req, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestNormalizeKeepsIdempotencyKey(t *testing.T) {
	intake := services.NewIntake(fixedClock)

	key := "client-key-42"
	req := saleRequest()
	req.IdempotencyKey = &key

	txn, err := intake.Normalize("org-1", req, "user-1")
	require.NoError(t, err)
	require.NotNil(t, txn.IdempotencyKey)
	assert.Equal(t, key, *txn.IdempotencyKey)
}
