package controller

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockledger/internal/domain"
	"stockledger/internal/dto"
	"stockledger/internal/httpx"
)

// searchLimit matches the product autocomplete cap.
const searchLimit = 10

type SupplierReader interface {
	Search(ctx context.Context, term string, limit int) ([]domain.Supplier, error)
}

type CustomerReader interface {
	Search(ctx context.Context, term string, limit int) ([]domain.Customer, error)
}

type PartyController struct {
	suppliers SupplierReader
	customers CustomerReader
	logger    *zap.Logger
}

func NewPartyController(suppliers SupplierReader, customers CustomerReader, logger *zap.Logger) *PartyController {
	return &PartyController{
		suppliers: suppliers,
		customers: customers,
		logger:    logger,
	}
}

func (c *PartyController) SearchSuppliers(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	suppliers, err := c.suppliers.Search(r.Context(), r.URL.Query().Get("q"), searchLimit)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	responses := make([]dto.SupplierResponse, len(suppliers))
	for i, s := range suppliers {
		responses[i] = dto.SupplierResponse{
			ID:          s.ID,
			CompanyName: s.CompanyName,
			Email:       s.Email,
			Phone:       s.Phone,
			IsActive:    s.IsActive,
		}
	}

	httpx.WriteJSON(w, logger, http.StatusOK, responses)
}

func (c *PartyController) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	customers, err := c.customers.Search(r.Context(), r.URL.Query().Get("q"), searchLimit)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	responses := make([]dto.CustomerResponse, len(customers))
	for i, cu := range customers {
		responses[i] = dto.CustomerResponse{
			ID:          cu.ID,
			CompanyName: cu.CompanyName,
			PaymentType: cu.PaymentType,
			IsActive:    cu.IsActive,
		}
	}

	httpx.WriteJSON(w, logger, http.StatusOK, responses)
}
