package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/supply"
)

// searchLimit caps autocomplete results; minQueryLength keeps one-character
// queries from scanning the table.
const (
	searchLimit    = 10
	minQueryLength = 2
)

type ProductReader interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Product, error)
	ListLowStock(ctx context.Context) ([]domain.Product, error)
	Delete(ctx context.Context, id int) error
}

type StockEntryReader interface {
	ListByProduct(ctx context.Context, productID int) ([]domain.StockEntry, error)
}

type OpeningStockRepository interface {
	Insert(ctx context.Context, rec domain.OpeningStock) (int, error)
}

type StockAdjuster interface {
	AdjustStock(ctx context.Context, in supply.AdjustInput) (*domain.Product, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, action string, actor domain.Actor, description string)
}

type AdjustStockCommand struct {
	ProductID int
	Quantity  int
	EntryType string
	Notes     string
}

type RecordOpeningStockCommand struct {
	ProductID       int
	Month           string
	OpeningQuantity int
}

type CatalogUseCase struct {
	products     ProductReader
	entries      StockEntryReader
	openingStock OpeningStockRepository
	adjuster     StockAdjuster
	audit        AuditRecorder
	logger       *zap.Logger
}

func NewCatalogUseCase(
	products ProductReader,
	entries StockEntryReader,
	openingStock OpeningStockRepository,
	adjuster StockAdjuster,
	audit AuditRecorder,
	logger *zap.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		products:     products,
		entries:      entries,
		openingStock: openingStock,
		adjuster:     adjuster,
		audit:        audit,
		logger:       logger,
	}
}

// Search returns an empty result for queries below the minimum length
// rather than an error, so autocomplete callers need no special casing.
func (uc *CatalogUseCase) Search(ctx context.Context, query string) ([]domain.Product, error) {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) < minQueryLength {
		return []domain.Product{}, nil
	}
	return uc.products.Search(ctx, trimmed, searchLimit)
}

func (uc *CatalogUseCase) ListLowStock(ctx context.Context) ([]domain.Product, error) {
	return uc.products.ListLowStock(ctx)
}

func (uc *CatalogUseCase) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	return uc.products.FindByID(ctx, id)
}

func (uc *CatalogUseCase) ListStockEntries(ctx context.Context, productID int) ([]domain.StockEntry, error) {
	if _, err := uc.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return uc.entries.ListByProduct(ctx, productID)
}

func (uc *CatalogUseCase) DeleteProduct(ctx context.Context, id int, actor domain.Actor) error {
	if !actor.Staff {
		return apperrors.NewForbiddenError("staff privileges required to delete a product")
	}

	product, err := uc.products.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.products.Delete(ctx, id); err != nil {
		return err
	}

	uc.logger.Info("product deleted", zap.Int("productId", id), zap.String("code", product.Code))
	return nil
}

func (uc *CatalogUseCase) AdjustStock(ctx context.Context, actor domain.Actor, cmd AdjustStockCommand) (*domain.Product, error) {
	product, err := uc.adjuster.AdjustStock(ctx, supply.AdjustInput{
		ProductID: cmd.ProductID,
		Quantity:  cmd.Quantity,
		EntryType: cmd.EntryType,
		Notes:     cmd.Notes,
		Actor:     actor,
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, domain.AuditActionStockEdit, actor,
		fmt.Sprintf("Stock %s of %d on product %s", cmd.EntryType, cmd.Quantity, product.Code))

	return product, nil
}

func (uc *CatalogUseCase) RecordOpeningStock(ctx context.Context, actor domain.Actor, cmd RecordOpeningStockCommand) (*domain.OpeningStock, error) {
	if !actor.Staff {
		return nil, apperrors.NewForbiddenError("staff privileges required to record opening stock")
	}

	if cmd.OpeningQuantity < 0 {
		return nil, apperrors.NewValidationError("invalid quantity", apperrors.ValidationDetail{
			Field:   "openingQuantity",
			Message: "openingQuantity must not be negative",
		})
	}

	month, err := time.Parse("2006-01", cmd.Month)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid month", apperrors.ValidationDetail{
			Field:   "month",
			Message: "month must be a YYYY-MM value",
		})
	}

	if _, err := uc.products.FindByID(ctx, cmd.ProductID); err != nil {
		return nil, err
	}

	rec := domain.OpeningStock{
		ProductID:       cmd.ProductID,
		Month:           month,
		OpeningQuantity: cmd.OpeningQuantity,
		RecordedBy:      actor.UserID,
	}

	id, err := uc.openingStock.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	rec.RecordedAt = time.Now()

	uc.logger.Info("opening stock recorded",
		zap.Int("productId", cmd.ProductID),
		zap.String("month", cmd.Month),
		zap.Int("openingQuantity", cmd.OpeningQuantity),
	)

	return &rec, nil
}
