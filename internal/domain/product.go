package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Main product lines carried by the business.
const (
	CategoryFire  = "Fire"
	CategoryICT   = "ICT"
	CategorySolar = "Solar"
)

type Category struct {
	ID          int
	Name        string
	Description string
	CreatedAt   time.Time
}

type SubCategory struct {
	ID          int
	CategoryID  int
	Name        string
	Description string
	CreatedAt   time.Time
}

type Product struct {
	ID            int
	SubCategoryID int
	Code          string
	Name          string
	Description   string
	UnitPrice     decimal.Decimal
	CurrentStock  int
	MinimumStock  int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock reports whether the product is at or below its reorder threshold.
func (p Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinimumStock
}
