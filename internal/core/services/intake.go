package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	"github.com/openbooks/ledger_posting_app/internal/core/domain"
	"github.com/openbooks/ledger_posting_app/internal/dto"
	"github.com/openbooks/ledger_posting_app/internal/utils/refnum"
)

// Intake validates and normalizes incoming business transactions into their
// canonical internal form. It is pure apart from the injected clock and is
// safe for concurrent use.
type Intake struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewIntake creates an Intake with the given clock. Pass time.Now in
// production; tests substitute a fixed clock.
func NewIntake(now func() time.Time) *Intake {
	if now == nil {
		now = time.Now
	}
	return &Intake{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}
}

// Normalize validates the request and produces the canonical
// BusinessTransaction. Every violated field is reported, not just the first;
// on any violation the returned error unwraps to apperrors.ErrValidation.
func (i *Intake) Normalize(organizationID string, req dto.PostTransactionRequest, userID string) (domain.BusinessTransaction, error) {
	verr := &apperrors.ValidationError{}

	if organizationID == "" {
		verr.Add("organizationID", "must be present")
	}

	category := domain.TransactionCategory(strings.ToUpper(req.Category))
	if !category.IsValid() {
		verr.Add("category", fmt.Sprintf("unknown category %q", req.Category))
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		verr.Add("amount", "must be greater than zero")
	}

	if req.TransactionDate.IsZero() {
		verr.Add("transactionDate", "must be present")
	}

	var detail domain.TransactionDetail
	if category.IsValid() {
		var derr error
		detail, derr = i.parseDetail(category, req.Detail)
		if derr != nil {
			verr.Add("detail", derr.Error())
		} else {
			i.checkDetail(detail, req.Amount, verr)
		}
	}

	if verr.HasViolations() {
		return domain.BusinessTransaction{}, verr
	}

	now := i.now().UTC()

	// Callers may supply their own reference; otherwise normalize a
	// deterministic-format one from the category prefix.
	reference := ""
	if req.ReferenceNumber != nil && *req.ReferenceNumber != "" {
		reference = *req.ReferenceNumber
	} else {
		reference = refnum.Generate(category.RefPrefix())
	}

	return domain.BusinessTransaction{
		TransactionID:   uuid.NewString(),
		OrganizationID:  organizationID,
		Category:        category,
		Amount:          req.Amount,
		RelatedEntityID: req.RelatedEntityID,
		Detail:          detail,
		TransactionDate: req.TransactionDate,
		Description:     req.Description,
		ReferenceNumber: reference,
		IdempotencyKey:  req.IdempotencyKey,
		Classification:  domain.ClassifyTransaction(category),
		Status:          domain.TxnPending,
		Metadata:        req.Metadata,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}, nil
}

// parseDetail decodes the raw payload into the typed variant declared by the
// category. Unknown fields are rejected so callers notice schema drift.
func (i *Intake) parseDetail(category domain.TransactionCategory, raw json.RawMessage) (domain.TransactionDetail, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("detail payload is required for category %s", category)
	}

	decode := func(v any) error {
		dec := json.NewDecoder(strings.NewReader(string(raw)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("detail payload does not match category %s: %v", category, err)
		}
		return nil
	}

	var (
		detail domain.TransactionDetail
		err    error
	)
	switch category {
	case domain.CategorySale:
		var d domain.SaleDetail
		err = decode(&d)
		detail = d
	case domain.CategoryPurchase:
		var d domain.PurchaseDetail
		err = decode(&d)
		detail = d
	case domain.CategoryPayment:
		var d domain.PaymentDetail
		err = decode(&d)
		detail = d
	case domain.CategoryReceipt:
		var d domain.ReceiptDetail
		err = decode(&d)
		detail = d
	case domain.CategoryExpense:
		var d domain.ExpenseDetail
		err = decode(&d)
		detail = d
	case domain.CategoryPayroll:
		var d domain.PayrollDetail
		err = decode(&d)
		detail = d
	case domain.CategoryInventoryAdjustment:
		var d domain.InventoryAdjustmentDetail
		err = decode(&d)
		detail = d
	default:
		return nil, fmt.Errorf("no detail variant registered for category %s", category)
	}
	if err != nil {
		return nil, err
	}

	if verr := i.validate.Struct(detail); verr != nil {
		if fieldErrs, ok := verr.(validator.ValidationErrors); ok {
			msgs := make([]string, len(fieldErrs))
			for n, fe := range fieldErrs {
				msgs[n] = fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
			}
			return nil, fmt.Errorf("invalid %s detail: %s", category, strings.Join(msgs, ", "))
		}
		return nil, verr
	}
	return detail, nil
}

// checkDetail applies the decimal constraints the struct validator cannot express.
func (i *Intake) checkDetail(detail domain.TransactionDetail, amount decimal.Decimal, verr *apperrors.ValidationError) {
	switch d := detail.(type) {
	case domain.SaleDetail:
		if d.TaxAmount.IsNegative() {
			verr.Add("detail.taxAmount", "must not be negative")
		}
		if d.TaxAmount.GreaterThanOrEqual(amount) && d.TaxAmount.IsPositive() {
			verr.Add("detail.taxAmount", "must be less than the total amount")
		}
		if d.CostOfGoods.IsNegative() {
			verr.Add("detail.costOfGoods", "must not be negative")
		}
	case domain.PayrollDetail:
		if d.GrossPay.LessThanOrEqual(decimal.Zero) {
			verr.Add("detail.grossPay", "must be greater than zero")
		}
		if d.NetPay.LessThanOrEqual(decimal.Zero) {
			verr.Add("detail.netPay", "must be greater than zero")
		}
		if d.NetPay.GreaterThan(d.GrossPay) {
			verr.Add("detail.netPay", "must not exceed gross pay")
		}
		if d.GrossPay.IsPositive() && !d.GrossPay.Equal(amount) {
			verr.Add("amount", "must equal detail.grossPay for payroll transactions")
		}
	}
}
