package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvoiceStatusOutstanding = "Outstanding"
	InvoiceStatusPartial     = "Partial"
	InvoiceStatusPaid        = "Paid"
)

const (
	PaymentMethodCash         = "Cash"
	PaymentMethodCheque       = "Cheque"
	PaymentMethodBankTransfer = "Bank Transfer"
	PaymentMethodMobileMoney  = "Mobile Money"
	PaymentMethodOther        = "Other"
)

type Invoice struct {
	ID            int
	InvoiceNumber string
	CustomerID    int
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	Status        string
	DueDate       *time.Time
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DeriveInvoiceStatus is the single source of truth for the invoice status
// column: Paid when fully covered, Outstanding when untouched, Partial
// in between. Overpayment still derives to Paid.
func DeriveInvoiceStatus(paid, total decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(total):
		return InvoiceStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return InvoiceStatusPartial
	default:
		return InvoiceStatusOutstanding
	}
}

// RemainingBalance is always derived, never persisted. It goes negative
// when an invoice is overpaid.
func (i Invoice) RemainingBalance() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

// InvoiceItem is an immutable invoice line. Subtotal is computed
// server-side as quantity times unit price.
type InvoiceItem struct {
	ID        int
	InvoiceID int
	ProductID int
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Payment is one append-only payment record against an invoice.
type Payment struct {
	ID              int
	InvoiceID       int
	Amount          decimal.Decimal
	PaymentMethod   string
	ReferenceNumber string
	PaymentDate     time.Time
	Notes           string
	RecordedBy      string
	CreatedAt       time.Time
}

func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheque, PaymentMethodBankTransfer,
		PaymentMethodMobileMoney, PaymentMethodOther:
		return true
	}
	return false
}
