package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockledger/internal/auth"
	"stockledger/internal/domain"
	"stockledger/internal/dto"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/httpx"
	"stockledger/internal/sale/usecase"
)

type SaleUseCase interface {
	Create(ctx context.Context, actor domain.Actor, cmd usecase.CreateSaleCommand) (*domain.Sale, error)
	UpdateSupply(ctx context.Context, actor domain.Actor, cmd usecase.UpdateSupplyCommand) (*domain.Sale, error)
	GetByID(ctx context.Context, id int) (*domain.Sale, error)
	ListOutstanding(ctx context.Context) ([]domain.Sale, error)
	ListOutstandingByCustomer(ctx context.Context, customerID int) ([]domain.Sale, error)
}

type SaleController struct {
	useCase SaleUseCase
	logger  *zap.Logger
}

func NewSaleController(useCase SaleUseCase, logger *zap.Logger) *SaleController {
	return &SaleController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *SaleController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteValidationError(w, logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	cmd, validationErr := c.buildCreateCommand(req)
	if validationErr != nil {
		ve, _ := apperrors.IsValidationError(validationErr)
		httpx.WriteValidationError(w, logger, traceID, ve.Message, ve.Details...)
		return
	}

	actor, _ := auth.ActorFrom(r.Context())

	sale, err := c.useCase.Create(r.Context(), actor, cmd)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusCreated, toSaleResponse(sale))
}

func (c *SaleController) buildCreateCommand(req dto.CreateSaleRequest) (usecase.CreateSaleCommand, error) {
	var details []apperrors.ValidationDetail

	if req.ProductID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
	}

	if req.CustomerID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "customerId",
			Message: "customerId must be a positive integer",
		})
	}

	if req.QuantityOrdered <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantityOrdered",
			Message: "quantityOrdered must be a positive integer",
		})
	}

	if req.QuantitySupplied < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantitySupplied",
			Message: "quantitySupplied must not be negative",
		})
	}

	if req.QuantityOrdered > 0 && req.QuantitySupplied > req.QuantityOrdered {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantitySupplied",
			Message: "quantitySupplied must not exceed quantityOrdered",
		})
	}

	var unitPrice *decimal.Decimal
	if req.UnitPrice != nil {
		parsed, err := decimal.NewFromString(*req.UnitPrice)
		if err != nil || parsed.LessThanOrEqual(decimal.Zero) {
			details = append(details, apperrors.ValidationDetail{
				Field:   "unitPrice",
				Message: "unitPrice must be a positive decimal string",
			})
		} else {
			unitPrice = &parsed
		}
	}

	if len(details) > 0 {
		return usecase.CreateSaleCommand{}, apperrors.NewValidationError("validation failed", details...)
	}

	return usecase.CreateSaleCommand{
		ProductID:          req.ProductID,
		CustomerID:         req.CustomerID,
		QuantityOrdered:    req.QuantityOrdered,
		QuantitySupplied:   req.QuantitySupplied,
		UnitPrice:          unitPrice,
		LPOQuotationNumber: req.LPOQuotationNumber,
		DeliveryNumber:     req.DeliveryNumber,
		Notes:              req.Notes,
	}, nil
}

func (c *SaleController) UpdateSupply(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	saleID, err := pathID(r, "saleId")
	if err != nil {
		logger.Warn("invalid saleId in path", zap.Error(err))
		httpx.WriteValidationError(w, logger, traceID, "invalid saleId", apperrors.ValidationDetail{
			Field:   "saleId",
			Message: "saleId must be a positive integer",
		})
		return
	}

	var req dto.UpdateSupplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteValidationError(w, logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if req.QuantitySupplied < 0 {
		httpx.WriteValidationError(w, logger, traceID, "validation failed", apperrors.ValidationDetail{
			Field:   "quantitySupplied",
			Message: "quantitySupplied must not be negative",
		})
		return
	}

	actor, _ := auth.ActorFrom(r.Context())

	sale, err := c.useCase.UpdateSupply(r.Context(), actor, usecase.UpdateSupplyCommand{
		SaleID:           saleID,
		QuantitySupplied: req.QuantitySupplied,
		ExpectedStatus:   req.SupplyStatus,
	})
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toSaleResponse(sale))
}

func (c *SaleController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	saleID, err := pathID(r, "saleId")
	if err != nil {
		httpx.WriteValidationError(w, logger, traceID, "invalid saleId", apperrors.ValidationDetail{
			Field:   "saleId",
			Message: "saleId must be a positive integer",
		})
		return
	}

	sale, err := c.useCase.GetByID(r.Context(), saleID)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toSaleResponse(sale))
}

func (c *SaleController) ListOutstanding(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var (
		sales []domain.Sale
		err   error
	)

	if customerParam := r.URL.Query().Get("customerId"); customerParam != "" {
		customerID, convErr := strconv.Atoi(customerParam)
		if convErr != nil || customerID <= 0 {
			httpx.WriteValidationError(w, logger, traceID, "invalid customerId", apperrors.ValidationDetail{
				Field:   "customerId",
				Message: "customerId must be a positive integer",
			})
			return
		}
		sales, err = c.useCase.ListOutstandingByCustomer(r.Context(), customerID)
	} else {
		sales, err = c.useCase.ListOutstanding(r.Context())
	}

	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	responses := make([]dto.SaleResponse, len(sales))
	for i := range sales {
		responses[i] = toSaleResponse(&sales[i])
	}

	httpx.WriteJSON(w, logger, http.StatusOK, responses)
}

func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

func toSaleResponse(sale *domain.Sale) dto.SaleResponse {
	return dto.SaleResponse{
		ID:                 sale.ID,
		SaleNumber:         sale.SaleNumber,
		ProductID:          sale.ProductID,
		CustomerID:         sale.CustomerID,
		QuantityOrdered:    sale.QuantityOrdered,
		QuantitySupplied:   sale.QuantitySupplied,
		PendingQuantity:    sale.PendingQuantity(),
		SupplyStatus:       sale.SupplyStatus,
		UnitPrice:          sale.UnitPrice.StringFixed(2),
		TotalAmount:        sale.TotalAmount.StringFixed(2),
		LPOQuotationNumber: sale.LPOQuotationNumber,
		DeliveryNumber:     sale.DeliveryNumber,
		Notes:              sale.Notes,
		CreatedAt:          sale.CreatedAt,
		UpdatedAt:          sale.UpdatedAt,
	}
}
