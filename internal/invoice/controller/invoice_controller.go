package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockledger/internal/auth"
	"stockledger/internal/domain"
	"stockledger/internal/dto"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/httpx"
	"stockledger/internal/invoice/service"
	"stockledger/internal/invoice/usecase"
)

type InvoiceUseCase interface {
	Create(ctx context.Context, actor domain.Actor, in service.CreateInvoiceInput) (*domain.Invoice, []domain.InvoiceItem, error)
	RecordPayment(ctx context.Context, actor domain.Actor, in service.RecordPaymentInput) (*domain.Invoice, error)
	GetDetail(ctx context.Context, id int) (*usecase.InvoiceDetail, error)
	ListOutstanding(ctx context.Context) ([]domain.Invoice, error)
}

type InvoiceController struct {
	useCase InvoiceUseCase
	logger  *zap.Logger
}

func NewInvoiceController(useCase InvoiceUseCase, logger *zap.Logger) *InvoiceController {
	return &InvoiceController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *InvoiceController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteValidationError(w, logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	input, validationErr := c.buildCreateInput(req)
	if validationErr != nil {
		ve, _ := apperrors.IsValidationError(validationErr)
		httpx.WriteValidationError(w, logger, traceID, ve.Message, ve.Details...)
		return
	}

	actor, _ := auth.ActorFrom(r.Context())

	inv, items, err := c.useCase.Create(r.Context(), actor, input)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusCreated, toInvoiceResponse(inv, items, nil))
}

func (c *InvoiceController) buildCreateInput(req dto.CreateInvoiceRequest) (service.CreateInvoiceInput, error) {
	var details []apperrors.ValidationDetail

	if req.CustomerID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "customerId",
			Message: "customerId must be a positive integer",
		})
	}

	if len(req.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	var dueDate *time.Time
	if req.DueDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{
				Field:   "dueDate",
				Message: "dueDate must be a YYYY-MM-DD date",
			})
		} else {
			dueDate = &parsed
		}
	}

	items := make([]service.CreateInvoiceItemInput, 0, len(req.Items))
	for idx, item := range req.Items {
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].unitPrice",
				Message: "unitPrice must be a decimal string",
			})
			continue
		}
		items = append(items, service.CreateInvoiceItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
		})
	}

	if len(details) > 0 {
		return service.CreateInvoiceInput{}, apperrors.NewValidationError("validation failed", details...)
	}

	return service.CreateInvoiceInput{
		CustomerID: req.CustomerID,
		DueDate:    dueDate,
		Notes:      req.Notes,
		Items:      items,
	}, nil
}

func (c *InvoiceController) RecordPayment(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	invoiceID, err := pathID(r, "invoiceId")
	if err != nil {
		logger.Warn("invalid invoiceId in path", zap.Error(err))
		httpx.WriteValidationError(w, logger, traceID, "invalid invoiceId", apperrors.ValidationDetail{
			Field:   "invoiceId",
			Message: "invoiceId must be a positive integer",
		})
		return
	}

	var req dto.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteValidationError(w, logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.WriteValidationError(w, logger, traceID, "invalid amount", apperrors.ValidationDetail{
			Field:   "amount",
			Message: "amount must be a decimal string",
		})
		return
	}

	actor, _ := auth.ActorFrom(r.Context())

	inv, err := c.useCase.RecordPayment(r.Context(), actor, service.RecordPaymentInput{
		InvoiceID:       invoiceID,
		Amount:          amount,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	})
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toInvoiceResponse(inv, nil, nil))
}

func (c *InvoiceController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	invoiceID, err := pathID(r, "invoiceId")
	if err != nil {
		httpx.WriteValidationError(w, logger, traceID, "invalid invoiceId", apperrors.ValidationDetail{
			Field:   "invoiceId",
			Message: "invoiceId must be a positive integer",
		})
		return
	}

	detail, err := c.useCase.GetDetail(r.Context(), invoiceID)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toInvoiceResponse(detail.Invoice, detail.Items, detail.Payments))
}

func (c *InvoiceController) ListOutstanding(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	invoices, err := c.useCase.ListOutstanding(r.Context())
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	responses := make([]dto.InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = toInvoiceResponse(&invoices[i], nil, nil)
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

func toInvoiceResponse(inv *domain.Invoice, items []domain.InvoiceItem, payments []domain.Payment) dto.InvoiceResponse {
	resp := dto.InvoiceResponse{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		CustomerID:       inv.CustomerID,
		TotalAmount:      inv.TotalAmount.StringFixed(2),
		PaidAmount:       inv.PaidAmount.StringFixed(2),
		RemainingBalance: inv.RemainingBalance().StringFixed(2),
		Status:           inv.Status,
		Notes:            inv.Notes,
		CreatedAt:        inv.CreatedAt,
	}

	if inv.DueDate != nil {
		due := inv.DueDate.Format("2006-01-02")
		resp.DueDate = &due
	}

	for _, item := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Subtotal:  item.Subtotal.StringFixed(2),
		})
	}

	for _, p := range payments {
		resp.Payments = append(resp.Payments, dto.PaymentResponse{
			ID:              p.ID,
			Amount:          p.Amount.StringFixed(2),
			PaymentMethod:   p.PaymentMethod,
			ReferenceNumber: p.ReferenceNumber,
			PaymentDate:     p.PaymentDate,
			RecordedBy:      p.RecordedBy,
			CreatedAt:       p.CreatedAt,
		})
	}

	return resp
}
