package service

import (
	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

// validateSupplyUpdate enforces the quantity invariant and derives the new
// status. The caller's expected status, when present, is a consistency
// check only.
func validateSupplyUpdate(sale *domain.Sale, in UpdateSupplyInput) (string, error) {
	if in.QuantitySupplied < 0 {
		return "", apperrors.NewValidationError("invalid quantity", apperrors.ValidationDetail{
			Field:   "quantitySupplied",
			Message: "quantitySupplied must not be negative",
		})
	}
	if in.QuantitySupplied > sale.QuantityOrdered {
		return "", apperrors.NewValidationError("invalid quantity", apperrors.ValidationDetail{
			Field:   "quantitySupplied",
			Message: "quantitySupplied must not exceed quantityOrdered",
		})
	}

	newStatus := domain.DeriveSupplyStatus(in.QuantitySupplied, sale.QuantityOrdered)
	if in.ExpectedStatus != nil && *in.ExpectedStatus != newStatus {
		return "", apperrors.NewValidationError("supply status mismatch", apperrors.ValidationDetail{
			Field:   "supplyStatus",
			Message: "supplyStatus does not match quantitySupplied; status is derived from quantities",
		})
	}

	return newStatus, nil
}
