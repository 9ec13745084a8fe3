package dto

import "time"

type CreateInvoiceRequest struct {
	CustomerID int                      `json:"customerId"`
	DueDate    *string                  `json:"dueDate,omitempty"`
	Notes      string                   `json:"notes"`
	Items      []CreateInvoiceItemInput `json:"items"`
}

type CreateInvoiceItemInput struct {
	ProductID int    `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

type RecordPaymentRequest struct {
	Amount          string `json:"amount"`
	PaymentMethod   string `json:"paymentMethod"`
	ReferenceNumber string `json:"referenceNumber"`
	Notes           string `json:"notes"`
}

type InvoiceResponse struct {
	ID               int                   `json:"id"`
	InvoiceNumber    string                `json:"invoiceNumber"`
	CustomerID       int                   `json:"customerId"`
	TotalAmount      string                `json:"totalAmount"`
	PaidAmount       string                `json:"paidAmount"`
	RemainingBalance string                `json:"remainingBalance"`
	Status           string                `json:"status"`
	DueDate          *string               `json:"dueDate,omitempty"`
	Notes            string                `json:"notes"`
	Items            []InvoiceItemResponse `json:"items,omitempty"`
	Payments         []PaymentResponse     `json:"payments,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
}

type InvoiceItemResponse struct {
	ID        int    `json:"id"`
	ProductID int    `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Subtotal  string `json:"subtotal"`
}

type PaymentResponse struct {
	ID              int       `json:"id"`
	Amount          string    `json:"amount"`
	PaymentMethod   string    `json:"paymentMethod"`
	ReferenceNumber string    `json:"referenceNumber"`
	PaymentDate     time.Time `json:"paymentDate"`
	RecordedBy      string    `json:"recordedBy"`
	CreatedAt       time.Time `json:"createdAt"`
}
