package dto

import "time"

type AdjustStockRequest struct {
	Quantity int    `json:"quantity"`
	Type     string `json:"type"`
	Notes    string `json:"notes"`
}

type RecordOpeningStockRequest struct {
	Month           string `json:"month"`
	OpeningQuantity int    `json:"openingQuantity"`
}

type SearchProductsRequest struct {
	Query string `json:"q"`
}

type ProductResponse struct {
	ID           int    `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	UnitPrice    string `json:"unitPrice"`
	CurrentStock int    `json:"currentStock"`
	MinimumStock int    `json:"minimumStock"`
	LowStock     bool   `json:"lowStock"`
	IsActive     bool   `json:"isActive"`
}

type StockEntryResponse struct {
	ID         int       `json:"id"`
	ProductID  int       `json:"productId"`
	EntryType  string    `json:"entryType"`
	Quantity   int       `json:"quantity"`
	SupplierID *int      `json:"supplierId,omitempty"`
	Notes      string    `json:"notes"`
	RecordedBy string    `json:"recordedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

type OpeningStockResponse struct {
	ID              int       `json:"id"`
	ProductID       int       `json:"productId"`
	Month           string    `json:"month"`
	OpeningQuantity int       `json:"openingQuantity"`
	RecordedBy      string    `json:"recordedBy"`
	RecordedAt      time.Time `json:"recordedAt"`
}

type SupplierResponse struct {
	ID          int    `json:"id"`
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	IsActive    bool   `json:"isActive"`
}

type CustomerResponse struct {
	ID          int    `json:"id"`
	CompanyName string `json:"companyName"`
	PaymentType string `json:"paymentType"`
	IsActive    bool   `json:"isActive"`
}
