package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/supply"
)

var (
	staffActor    = domain.Actor{UserID: "u1", Name: "Staff", Staff: true}
	nonStaffActor = domain.Actor{UserID: "u2", Name: "Clerk", Staff: false}
)

type fakeProducts struct {
	product     *domain.Product
	searched    string
	searchLimit int
	results     []domain.Product
	deleted     []int
	deleteErr   error
}

func (f *fakeProducts) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	if f.product == nil {
		return nil, apperrors.NewNotFoundError("product not found")
	}
	return f.product, nil
}

func (f *fakeProducts) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	f.searched = query
	f.searchLimit = limit
	return f.results, nil
}

func (f *fakeProducts) ListLowStock(ctx context.Context) ([]domain.Product, error) {
	return f.results, nil
}

func (f *fakeProducts) Delete(ctx context.Context, id int) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeEntries struct {
	entries []domain.StockEntry
}

func (f *fakeEntries) ListByProduct(ctx context.Context, productID int) ([]domain.StockEntry, error) {
	return f.entries, nil
}

type fakeOpeningStock struct {
	inserted  []domain.OpeningStock
	insertErr error
}

func (f *fakeOpeningStock) Insert(ctx context.Context, rec domain.OpeningStock) (int, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.inserted = append(f.inserted, rec)
	return len(f.inserted), nil
}

type fakeAdjuster struct {
	input   supply.AdjustInput
	product *domain.Product
	err     error
}

func (f *fakeAdjuster) AdjustStock(ctx context.Context, in supply.AdjustInput) (*domain.Product, error) {
	f.input = in
	return f.product, f.err
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Record(ctx context.Context, action string, actor domain.Actor, description string) {
	f.actions = append(f.actions, action)
}

func sampleProduct() *domain.Product {
	return &domain.Product{
		ID:           1,
		Code:         "CAP320",
		Name:         "Fire Cap 320",
		UnitPrice:    decimal.RequireFromString("150.00"),
		CurrentStock: 40,
		MinimumStock: 10,
		IsActive:     true,
	}
}

func newCatalogUseCase(products *fakeProducts, opening *fakeOpeningStock, adjuster *fakeAdjuster, audit *fakeAudit) *CatalogUseCase {
	return NewCatalogUseCase(products, &fakeEntries{}, opening, adjuster, audit, zap.NewNop())
}

func TestCatalogUseCase_Search_ShortQueryReturnsEmpty(t *testing.T) {
	products := &fakeProducts{results: []domain.Product{*sampleProduct()}}
	uc := newCatalogUseCase(products, &fakeOpeningStock{}, &fakeAdjuster{}, &fakeAudit{})

	result, err := uc.Search(context.Background(), " c ")

	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Empty(t, products.searched)
}

func TestCatalogUseCase_Search_TrimsAndLimits(t *testing.T) {
	products := &fakeProducts{results: []domain.Product{*sampleProduct()}}
	uc := newCatalogUseCase(products, &fakeOpeningStock{}, &fakeAdjuster{}, &fakeAudit{})

	result, err := uc.Search(context.Background(), "  cap  ")

	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "cap", products.searched)
	assert.Equal(t, 10, products.searchLimit)
}

func TestCatalogUseCase_AdjustStock_RecordsAudit(t *testing.T) {
	adjuster := &fakeAdjuster{product: sampleProduct()}
	audit := &fakeAudit{}
	uc := newCatalogUseCase(&fakeProducts{}, &fakeOpeningStock{}, adjuster, audit)

	product, err := uc.AdjustStock(context.Background(), staffActor, AdjustStockCommand{
		ProductID: 1,
		Quantity:  5,
		EntryType: domain.EntryTypeIn,
		Notes:     "recount",
	})

	require.NoError(t, err)
	assert.Equal(t, "CAP320", product.Code)
	assert.Equal(t, []string{domain.AuditActionStockEdit}, audit.actions)
	assert.Equal(t, staffActor, adjuster.input.Actor)
}

func TestCatalogUseCase_AdjustStock_PropagatesForbidden(t *testing.T) {
	adjuster := &fakeAdjuster{err: apperrors.NewForbiddenError("staff privileges required to adjust stock")}
	audit := &fakeAudit{}
	uc := newCatalogUseCase(&fakeProducts{}, &fakeOpeningStock{}, adjuster, audit)

	product, err := uc.AdjustStock(context.Background(), nonStaffActor, AdjustStockCommand{
		ProductID: 1,
		Quantity:  5,
		EntryType: domain.EntryTypeIn,
	})

	assert.Nil(t, product)
	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok)
	assert.Empty(t, audit.actions)
}

func TestCatalogUseCase_RecordOpeningStock_StaffOnly(t *testing.T) {
	opening := &fakeOpeningStock{}
	uc := newCatalogUseCase(&fakeProducts{product: sampleProduct()}, opening, &fakeAdjuster{}, &fakeAudit{})

	rec, err := uc.RecordOpeningStock(context.Background(), nonStaffActor, RecordOpeningStockCommand{
		ProductID:       1,
		Month:           "2025-06",
		OpeningQuantity: 100,
	})

	assert.Nil(t, rec)
	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok)
	assert.Empty(t, opening.inserted)
}

func TestCatalogUseCase_RecordOpeningStock_ParsesMonth(t *testing.T) {
	opening := &fakeOpeningStock{}
	uc := newCatalogUseCase(&fakeProducts{product: sampleProduct()}, opening, &fakeAdjuster{}, &fakeAudit{})

	rec, err := uc.RecordOpeningStock(context.Background(), staffActor, RecordOpeningStockCommand{
		ProductID:       1,
		Month:           "2025-06",
		OpeningQuantity: 100,
	})

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), rec.Month)
	assert.Equal(t, "u1", rec.RecordedBy)
	require.Len(t, opening.inserted, 1)
}

func TestCatalogUseCase_RecordOpeningStock_BadMonth_Rejected(t *testing.T) {
	uc := newCatalogUseCase(&fakeProducts{product: sampleProduct()}, &fakeOpeningStock{}, &fakeAdjuster{}, &fakeAudit{})

	rec, err := uc.RecordOpeningStock(context.Background(), staffActor, RecordOpeningStockCommand{
		ProductID:       1,
		Month:           "June 2025",
		OpeningQuantity: 100,
	})

	assert.Nil(t, rec)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestCatalogUseCase_RecordOpeningStock_DuplicateMonth_Conflict(t *testing.T) {
	opening := &fakeOpeningStock{insertErr: apperrors.NewConflictError("opening stock for product 1 in June 2025 already recorded")}
	uc := newCatalogUseCase(&fakeProducts{product: sampleProduct()}, opening, &fakeAdjuster{}, &fakeAudit{})

	rec, err := uc.RecordOpeningStock(context.Background(), staffActor, RecordOpeningStockCommand{
		ProductID:       1,
		Month:           "2025-06",
		OpeningQuantity: 100,
	})

	assert.Nil(t, rec)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestCatalogUseCase_DeleteProduct_StaffOnly(t *testing.T) {
	products := &fakeProducts{product: sampleProduct()}
	uc := newCatalogUseCase(products, &fakeOpeningStock{}, &fakeAdjuster{}, &fakeAudit{})

	err := uc.DeleteProduct(context.Background(), 1, nonStaffActor)

	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok)
	assert.Empty(t, products.deleted)
}

func TestCatalogUseCase_DeleteProduct_ReferencedRows_Conflict(t *testing.T) {
	products := &fakeProducts{
		product:   sampleProduct(),
		deleteErr: apperrors.NewConflictError("product 1 is referenced by existing records"),
	}
	uc := newCatalogUseCase(products, &fakeOpeningStock{}, &fakeAdjuster{}, &fakeAudit{})

	err := uc.DeleteProduct(context.Background(), 1, staffActor)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}
