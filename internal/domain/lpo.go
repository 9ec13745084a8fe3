package domain

import "time"

const (
	LPOStatusPending   = "Pending"
	LPOStatusPartial   = "Partial"
	LPOStatusCompleted = "Completed"
	LPOStatusCancelled = "Cancelled"
)

// LPO is a local purchase order: a supplier-side commitment to deliver
// goods, tracked against what has actually arrived.
type LPO struct {
	ID                int
	LPONumber         string
	SupplierID        int
	ProductID         int
	OrderedQuantity   int
	DeliveredQuantity int
	Status            string
	OrderDate         time.Time
	ExpectedDelivery  *time.Time
	ActualDelivery    *time.Time
	Notes             string
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DeriveLPOStatus computes the delivery status from quantities.
// Cancellation is a separate explicit transition and never derived.
func DeriveLPOStatus(delivered, ordered int) string {
	switch {
	case delivered <= 0:
		return LPOStatusPending
	case delivered >= ordered:
		return LPOStatusCompleted
	default:
		return LPOStatusPartial
	}
}

// PendingQuantity is the undelivered remainder of the order.
func (l LPO) PendingQuantity() int {
	return l.OrderedQuantity - l.DeliveredQuantity
}
