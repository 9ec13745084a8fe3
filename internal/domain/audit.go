package domain

import "time"

// Audited actions.
const (
	AuditActionStockEdit       = "Stock Edit"
	AuditActionInvoiceCreated  = "Invoice Created"
	AuditActionInvoiceUpdated  = "Invoice Updated"
	AuditActionPaymentRecorded = "Payment Recorded"
	AuditActionLPOUpdated      = "LPO Updated"
	AuditActionSaleCreated     = "Sale Created"
	AuditActionSupplyUpdated   = "Supply Updated"
)

type AuditLog struct {
	ID          int
	Action      string
	UserID      string
	Description string
	IPAddress   string
	Timestamp   time.Time
}
