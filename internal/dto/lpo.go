package dto

import "time"

type CreateLPORequest struct {
	SupplierID       int     `json:"supplierId"`
	ProductID        int     `json:"productId"`
	OrderedQuantity  int     `json:"orderedQuantity"`
	ExpectedDelivery *string `json:"expectedDelivery,omitempty"`
	Notes            string  `json:"notes"`
}

type RecordDeliveryRequest struct {
	DeliveredQuantity int `json:"deliveredQuantity"`
}

type LPOResponse struct {
	ID                int        `json:"id"`
	LPONumber         string     `json:"lpoNumber"`
	SupplierID        int        `json:"supplierId"`
	ProductID         int        `json:"productId"`
	OrderedQuantity   int        `json:"orderedQuantity"`
	DeliveredQuantity int        `json:"deliveredQuantity"`
	PendingQuantity   int        `json:"pendingQuantity"`
	Status            string     `json:"status"`
	OrderDate         time.Time  `json:"orderDate"`
	ExpectedDelivery  *time.Time `json:"expectedDelivery,omitempty"`
	ActualDelivery    *time.Time `json:"actualDelivery,omitempty"`
	Notes             string     `json:"notes"`
	CreatedAt         time.Time  `json:"createdAt"`
}
