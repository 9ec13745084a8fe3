package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockledger/internal/auth"
	"stockledger/internal/catalog/usecase"
	"stockledger/internal/domain"
	"stockledger/internal/dto"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/httpx"
)

type CatalogUseCase interface {
	Search(ctx context.Context, query string) ([]domain.Product, error)
	ListLowStock(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int) (*domain.Product, error)
	ListStockEntries(ctx context.Context, productID int) ([]domain.StockEntry, error)
	DeleteProduct(ctx context.Context, id int, actor domain.Actor) error
	AdjustStock(ctx context.Context, actor domain.Actor, cmd usecase.AdjustStockCommand) (*domain.Product, error)
	RecordOpeningStock(ctx context.Context, actor domain.Actor, cmd usecase.RecordOpeningStockCommand) (*domain.OpeningStock, error)
}

type CatalogController struct {
	useCase CatalogUseCase
	logger  *zap.Logger
}

func NewCatalogController(useCase CatalogUseCase, logger *zap.Logger) *CatalogController {
	return &CatalogController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *CatalogController) Search(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.SearchProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteValidationError(w, logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	products, err := c.useCase.Search(r.Context(), req.Query)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toProductResponses(products))
}

func (c *CatalogController) ListLowStock(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	products, err := c.useCase.ListLowStock(r.Context())
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toProductResponses(products))
}

func (c *CatalogController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, err := pathID(r, "productId")
	if err != nil {
		httpx.WriteValidationError(w, logger, traceID, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
		return
	}

	product, err := c.useCase.GetProduct(r.Context(), productID)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toProductResponse(product))
}

func (c *CatalogController) ListStockEntries(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, err := pathID(r, "productId")
	if err != nil {
		httpx.WriteValidationError(w, logger, traceID, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
		return
	}

	entries, err := c.useCase.ListStockEntries(r.Context(), productID)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	responses := make([]dto.StockEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = dto.StockEntryResponse{
			ID:         e.ID,
			ProductID:  e.ProductID,
			EntryType:  e.EntryType,
			Quantity:   e.Quantity,
			SupplierID: e.SupplierID,
			Notes:      e.Notes,
			RecordedBy: e.RecordedBy,
			CreatedAt:  e.CreatedAt,
		}
	}

	httpx.WriteJSON(w, logger, http.StatusOK, responses)
}

func (c *CatalogController) Delete(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, err := pathID(r, "productId")
	if err != nil {
		httpx.WriteValidationError(w, logger, traceID, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
		return
	}

	actor, _ := auth.ActorFrom(r.Context())

	if err := c.useCase.DeleteProduct(r.Context(), productID, actor); err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *CatalogController) AdjustStock(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, err := pathID(r, "productId")
	if err != nil {
		httpx.WriteValidationError(w, logger, traceID, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
		return
	}

	var req dto.AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteValidationError(w, logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	var details []apperrors.ValidationDetail
	if req.Quantity < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must not be negative",
		})
	}
	if !domain.IsValidEntryType(req.Type) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "type",
			Message: "type must be one of In, Out, Adjustment",
		})
	}
	if len(details) > 0 {
		httpx.WriteValidationError(w, logger, traceID, "validation failed", details...)
		return
	}

	actor, _ := auth.ActorFrom(r.Context())

	product, err := c.useCase.AdjustStock(r.Context(), actor, usecase.AdjustStockCommand{
		ProductID: productID,
		Quantity:  req.Quantity,
		EntryType: req.Type,
		Notes:     req.Notes,
	})
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toProductResponse(product))
}

func (c *CatalogController) RecordOpeningStock(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, err := pathID(r, "productId")
	if err != nil {
		httpx.WriteValidationError(w, logger, traceID, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
		return
	}

	var req dto.RecordOpeningStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteValidationError(w, logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	actor, _ := auth.ActorFrom(r.Context())

	rec, err := c.useCase.RecordOpeningStock(r.Context(), actor, usecase.RecordOpeningStockCommand{
		ProductID:       productID,
		Month:           req.Month,
		OpeningQuantity: req.OpeningQuantity,
	})
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusCreated, dto.OpeningStockResponse{
		ID:              rec.ID,
		ProductID:       rec.ProductID,
		Month:           rec.Month.Format("2006-01"),
		OpeningQuantity: rec.OpeningQuantity,
		RecordedBy:      rec.RecordedBy,
		RecordedAt:      rec.RecordedAt,
	})
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

func toProductResponse(p *domain.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Description:  p.Description,
		UnitPrice:    p.UnitPrice.StringFixed(2),
		CurrentStock: p.CurrentStock,
		MinimumStock: p.MinimumStock,
		LowStock:     p.IsLowStock(),
		IsActive:     p.IsActive,
	}
}

func toProductResponses(products []domain.Product) []dto.ProductResponse {
	responses := make([]dto.ProductResponse, len(products))
	for i := range products {
		responses[i] = toProductResponse(&products[i])
	}
	return responses
}
