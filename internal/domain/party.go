package domain

import "time"

const (
	PaymentTypeCash         = "Cash"
	PaymentTypeCheque       = "Cheque"
	PaymentTypeCredit       = "Credit"
	PaymentTypeBankTransfer = "Bank Transfer"
	PaymentTypeMobileMoney  = "Mobile Money"
)

type Supplier struct {
	ID          int
	CompanyName string
	Email       string
	Phone       string
	Address     string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Customer struct {
	ID          int
	CompanyName string
	Email       string
	Phone       string
	Address     string
	PaymentType string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func IsValidPaymentType(t string) bool {
	switch t {
	case PaymentTypeCash, PaymentTypeCheque, PaymentTypeCredit,
		PaymentTypeBankTransfer, PaymentTypeMobileMoney:
		return true
	}
	return false
}
