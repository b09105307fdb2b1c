package domain

import "github.com/shopspring/decimal"

// Condition keys exposed by detail payloads for rule matching.
const (
	CondPaymentMethod  = "paymentMethod"
	CondOrderType      = "orderType"
	CondExpenseType    = "expenseType"
	CondAdjustmentType = "adjustmentType"

	// CondComponent is a reserved key used to resolve auxiliary account pairs
	// (tax, withholding, cost-of-goods) through the same rule system as the
	// primary pair. Caller-supplied conditions never set it.
	CondComponent = "component"
)

// Auxiliary posting components resolved via CondComponent.
const (
	ComponentTax         = "tax"
	ComponentWithholding = "withholding"
	ComponentCostOfGoods = "cogs"
	ComponentRounding    = "rounding"
)

// TransactionDetail is the category-tagged payload of a business transaction.
// Each variant is validated structurally at intake; a loose key/value map is
// never accepted for business-critical fields.
type TransactionDetail interface {
	// Category returns the category this detail belongs to.
	Category() TransactionCategory
	// Conditions returns the match conditions the resolver uses to select a
	// mapping rule. Empty fields are omitted.
	Conditions() map[string]string
}

// SaleDetail describes a sale: how it was paid, tax collected, and optionally
// the cost of goods sold (which produces a second, independently balanced entry).
type SaleDetail struct {
	PaymentMethod string          `json:"paymentMethod" validate:"required"`
	OrderType     string          `json:"orderType"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	CostOfGoods   decimal.Decimal `json:"costOfGoods"`
}

func (d SaleDetail) Category() TransactionCategory { return CategorySale }

func (d SaleDetail) Conditions() map[string]string {
	c := map[string]string{CondPaymentMethod: d.PaymentMethod}
	if d.OrderType != "" {
		c[CondOrderType] = d.OrderType
	}
	return c
}

// PurchaseDetail describes a purchase of goods or services.
type PurchaseDetail struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
	VendorInvoice string `json:"vendorInvoice"`
}

func (d PurchaseDetail) Category() TransactionCategory { return CategoryPurchase }

func (d PurchaseDetail) Conditions() map[string]string {
	return map[string]string{CondPaymentMethod: d.PaymentMethod}
}

// PaymentDetail describes an outgoing settlement against a payable.
type PaymentDetail struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

func (d PaymentDetail) Category() TransactionCategory { return CategoryPayment }

func (d PaymentDetail) Conditions() map[string]string {
	return map[string]string{CondPaymentMethod: d.PaymentMethod}
}

// ReceiptDetail describes an incoming settlement against a receivable.
type ReceiptDetail struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

func (d ReceiptDetail) Category() TransactionCategory { return CategoryReceipt }

func (d ReceiptDetail) Conditions() map[string]string {
	return map[string]string{CondPaymentMethod: d.PaymentMethod}
}

// ExpenseDetail describes a generic operating expense.
type ExpenseDetail struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
	ExpenseType   string `json:"expenseType"`
}

func (d ExpenseDetail) Category() TransactionCategory { return CategoryExpense }

func (d ExpenseDetail) Conditions() map[string]string {
	c := map[string]string{CondPaymentMethod: d.PaymentMethod}
	if d.ExpenseType != "" {
		c[CondExpenseType] = d.ExpenseType
	}
	return c
}

// PayrollDetail describes a payroll run. GrossPay - NetPay is posted to a
// withholding payable account when the two differ.
type PayrollDetail struct {
	GrossPay decimal.Decimal `json:"grossPay"`
	NetPay   decimal.Decimal `json:"netPay"`
}

func (d PayrollDetail) Category() TransactionCategory { return CategoryPayroll }

func (d PayrollDetail) Conditions() map[string]string { return map[string]string{} }

// InventoryAdjustmentDetail describes a write-off, shrinkage or revaluation.
type InventoryAdjustmentDetail struct {
	AdjustmentType string `json:"adjustmentType" validate:"required,oneof=WRITE_OFF SHRINKAGE REVALUATION"`
	Reason         string `json:"reason"`
}

func (d InventoryAdjustmentDetail) Category() TransactionCategory {
	return CategoryInventoryAdjustment
}

func (d InventoryAdjustmentDetail) Conditions() map[string]string {
	return map[string]string{CondAdjustmentType: d.AdjustmentType}
}
