package domain

import "time"

// Stock ledger entry types.
const (
	EntryTypeIn         = "In"
	EntryTypeOut        = "Out"
	EntryTypeAdjustment = "Adjustment"
)

// StockEntry is one immutable row of the stock ledger. Quantity is always
// the unsigned magnitude of the movement; the direction comes from EntryType.
type StockEntry struct {
	ID         int
	ProductID  int
	EntryType  string
	Quantity   int
	SupplierID *int
	Notes      string
	RecordedBy string
	CreatedAt  time.Time
}

// SignedQuantity maps the entry onto the running stock counter:
// In adds, Out subtracts, Adjustment records without moving the counter.
func (e StockEntry) SignedQuantity() int {
	switch e.EntryType {
	case EntryTypeIn:
		return e.Quantity
	case EntryTypeOut:
		return -e.Quantity
	default:
		return 0
	}
}

func IsValidEntryType(t string) bool {
	switch t {
	case EntryTypeIn, EntryTypeOut, EntryTypeAdjustment:
		return true
	}
	return false
}

// OpeningStock is the recorded stock baseline for a product at the start of
// a month. One row per product and month.
type OpeningStock struct {
	ID              int
	ProductID       int
	Month           time.Time
	OpeningQuantity int
	RecordedBy      string
	RecordedAt      time.Time
}
