package dto

import "time"

type CreateSaleRequest struct {
	ProductID          int     `json:"productId"`
	CustomerID         int     `json:"customerId"`
	QuantityOrdered    int     `json:"quantityOrdered"`
	QuantitySupplied   int     `json:"quantitySupplied"`
	UnitPrice          *string `json:"unitPrice,omitempty"`
	LPOQuotationNumber string  `json:"lpoQuotationNumber"`
	DeliveryNumber     string  `json:"deliveryNumber"`
	Notes              string  `json:"notes"`
}

type UpdateSupplyRequest struct {
	QuantitySupplied int     `json:"quantitySupplied"`
	SupplyStatus     *string `json:"supplyStatus,omitempty"`
}

type SaleResponse struct {
	ID                 int       `json:"id"`
	SaleNumber         string    `json:"saleNumber"`
	ProductID          int       `json:"productId"`
	CustomerID         int       `json:"customerId"`
	QuantityOrdered    int       `json:"quantityOrdered"`
	QuantitySupplied   int       `json:"quantitySupplied"`
	PendingQuantity    int       `json:"pendingQuantity"`
	SupplyStatus       string    `json:"supplyStatus"`
	UnitPrice          string    `json:"unitPrice"`
	TotalAmount        string    `json:"totalAmount"`
	LPOQuotationNumber string    `json:"lpoQuotationNumber"`
	DeliveryNumber     string    `json:"deliveryNumber"`
	Notes              string    `json:"notes"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
