package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockledger/internal/auth"
	"stockledger/internal/domain"
	"stockledger/internal/dto"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/httpx"
	"stockledger/internal/lpo/service"
)

type LPOUseCase interface {
	Create(ctx context.Context, actor domain.Actor, in service.CreateLPOInput) (*domain.LPO, error)
	RecordDelivery(ctx context.Context, actor domain.Actor, in service.RecordDeliveryInput) (*domain.LPO, error)
	Cancel(ctx context.Context, actor domain.Actor, lpoID int) (*domain.LPO, error)
	GetByID(ctx context.Context, id int) (*domain.LPO, error)
	ListPending(ctx context.Context) ([]domain.LPO, error)
}

type LPOController struct {
	useCase LPOUseCase
	logger  *zap.Logger
}

func NewLPOController(useCase LPOUseCase, logger *zap.Logger) *LPOController {
	return &LPOController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *LPOController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateLPORequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteValidationError(w, logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	var details []apperrors.ValidationDetail
	if req.SupplierID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "supplierId",
			Message: "supplierId must be a positive integer",
		})
	}
	if req.ProductID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
	}
	if req.OrderedQuantity <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "orderedQuantity",
			Message: "orderedQuantity must be a positive integer",
		})
	}

	var expected *time.Time
	if req.ExpectedDelivery != nil {
		parsed, err := time.Parse("2006-01-02", *req.ExpectedDelivery)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{
				Field:   "expectedDelivery",
				Message: "expectedDelivery must be a YYYY-MM-DD date",
			})
		} else {
			expected = &parsed
		}
	}

	if len(details) > 0 {
		httpx.WriteValidationError(w, logger, traceID, "validation failed", details...)
		return
	}

	actor, _ := auth.ActorFrom(r.Context())

	lpo, err := c.useCase.Create(r.Context(), actor, service.CreateLPOInput{
		SupplierID:       req.SupplierID,
		ProductID:        req.ProductID,
		OrderedQuantity:  req.OrderedQuantity,
		ExpectedDelivery: expected,
		Notes:            req.Notes,
	})
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusCreated, toLPOResponse(lpo))
}

func (c *LPOController) RecordDelivery(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	lpoID, err := pathID(r, "lpoId")
	if err != nil {
		logger.Warn("invalid lpoId in path", zap.Error(err))
		httpx.WriteValidationError(w, logger, traceID, "invalid lpoId", apperrors.ValidationDetail{
			Field:   "lpoId",
			Message: "lpoId must be a positive integer",
		})
		return
	}

	var req dto.RecordDeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteValidationError(w, logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	actor, _ := auth.ActorFrom(r.Context())

	lpo, err := c.useCase.RecordDelivery(r.Context(), actor, service.RecordDeliveryInput{
		LPOID:             lpoID,
		DeliveredQuantity: req.DeliveredQuantity,
	})
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toLPOResponse(lpo))
}

func (c *LPOController) Cancel(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	lpoID, err := pathID(r, "lpoId")
	if err != nil {
		httpx.WriteValidationError(w, logger, traceID, "invalid lpoId", apperrors.ValidationDetail{
			Field:   "lpoId",
			Message: "lpoId must be a positive integer",
		})
		return
	}

	actor, _ := auth.ActorFrom(r.Context())

	lpo, err := c.useCase.Cancel(r.Context(), actor, lpoID)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toLPOResponse(lpo))
}

func (c *LPOController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	lpoID, err := pathID(r, "lpoId")
	if err != nil {
		httpx.WriteValidationError(w, logger, traceID, "invalid lpoId", apperrors.ValidationDetail{
			Field:   "lpoId",
			Message: "lpoId must be a positive integer",
		})
		return
	}

	lpo, err := c.useCase.GetByID(r.Context(), lpoID)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toLPOResponse(lpo))
}

func (c *LPOController) ListPending(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	lpos, err := c.useCase.ListPending(r.Context())
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	responses := make([]dto.LPOResponse, len(lpos))
	for i := range lpos {
		responses[i] = toLPOResponse(&lpos[i])
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

func toLPOResponse(lpo *domain.LPO) dto.LPOResponse {
	return dto.LPOResponse{
		ID:                lpo.ID,
		LPONumber:         lpo.LPONumber,
		SupplierID:        lpo.SupplierID,
		ProductID:         lpo.ProductID,
		OrderedQuantity:   lpo.OrderedQuantity,
		DeliveredQuantity: lpo.DeliveredQuantity,
		PendingQuantity:   lpo.PendingQuantity(),
		Status:            lpo.Status,
		OrderDate:         lpo.OrderDate,
		ExpectedDelivery:  lpo.ExpectedDelivery,
		ActualDelivery:    lpo.ActualDelivery,
		Notes:             lpo.Notes,
		CreatedAt:         lpo.CreatedAt,
	}
}
