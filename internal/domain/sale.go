package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SupplyStatusNotSupplied       = "Not Supplied"
	SupplyStatusPartiallySupplied = "Partially Supplied"
	SupplyStatusSupplied          = "Supplied"
)

type Sale struct {
	ID                 int
	SaleNumber         string
	ProductID          int
	CustomerID         int
	QuantityOrdered    int
	QuantitySupplied   int
	SupplyStatus       string
	UnitPrice          decimal.Decimal
	TotalAmount        decimal.Decimal
	LPOQuotationNumber string
	DeliveryNumber     string
	Notes              string
	RecordedBy         string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DeriveSupplyStatus computes the supply status from the quantity
// relationship. The status column is never taken from the caller.
func DeriveSupplyStatus(supplied, ordered int) string {
	switch {
	case supplied <= 0:
		return SupplyStatusNotSupplied
	case supplied >= ordered:
		return SupplyStatusSupplied
	default:
		return SupplyStatusPartiallySupplied
	}
}

// PendingQuantity is how much of the order is still undelivered.
func (s Sale) PendingQuantity() int {
	return s.QuantityOrdered - s.QuantitySupplied
}

func IsValidSupplyStatus(status string) bool {
	switch status {
	case SupplyStatusNotSupplied, SupplyStatusPartiallySupplied, SupplyStatusSupplied:
		return true
	}
	return false
}
