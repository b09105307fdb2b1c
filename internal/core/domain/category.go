package domain

// TransactionCategory identifies the business meaning of an incoming transaction
// and selects the line generation strategy used to post it.
type TransactionCategory string

const (
	CategorySale                TransactionCategory = "SALE"
	CategoryPurchase            TransactionCategory = "PURCHASE"
	CategoryPayment             TransactionCategory = "PAYMENT"
	CategoryReceipt             TransactionCategory = "RECEIPT"
	CategoryExpense             TransactionCategory = "EXPENSE"
	CategoryPayroll             TransactionCategory = "PAYROLL"
	CategoryInventoryAdjustment TransactionCategory = "INVENTORY_ADJUSTMENT"
)

// refPrefixes drive reference number normalization; see refnum.Generate.
var refPrefixes = map[TransactionCategory]string{
	CategorySale:                "SAL",
	CategoryPurchase:            "PUR",
	CategoryPayment:             "PAY",
	CategoryReceipt:             "RCT",
	CategoryExpense:             "EXP",
	CategoryPayroll:             "PRL",
	CategoryInventoryAdjustment: "INV",
}

// IsValid reports whether c is one of the known transaction categories.
func (c TransactionCategory) IsValid() bool {
	_, ok := refPrefixes[c]
	return ok
}

// RefPrefix returns the short prefix used for generated reference numbers.
// Unknown categories fall back to a generic prefix.
func (c TransactionCategory) RefPrefix() string {
	if p, ok := refPrefixes[c]; ok {
		return p
	}
	return "TXN"
}
