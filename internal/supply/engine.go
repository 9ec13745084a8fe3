package supply

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

type ProductRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error)
	ApplyStockDelta(ctx context.Context, tx *sql.Tx, id int, delta int) error
}

type StockEntryRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, entry domain.StockEntry) (int, error)
}

// ApplyInput is one logical stock delta. Delta is signed: positive credits
// stock (ledger In), negative debits it (ledger Out).
type ApplyInput struct {
	ProductID  int
	Delta      int
	Notes      string
	SupplierID *int
	Actor      domain.Actor

	// EnforceNonNegative rejects a debit larger than the stock on hand.
	// The sale supply path sets it; delivery and adjustment paths do not.
	EnforceNonNegative bool
}

// Engine is the single entry point for mutating a product's stock counter.
// Every caller runs Apply inside its own transaction so the counter update
// and the ledger entry commit or roll back together, under one row lock.
type Engine struct {
	productRepo ProductRepository
	entryRepo   StockEntryRepository
	logger      *zap.Logger
}

func NewEngine(productRepo ProductRepository, entryRepo StockEntryRepository, logger *zap.Logger) *Engine {
	return &Engine{
		productRepo: productRepo,
		entryRepo:   entryRepo,
		logger:      logger,
	}
}

// Apply locks the product row, shifts the counter by Delta and appends
// exactly one ledger entry carrying the unsigned magnitude. A zero delta
// locks and returns the product without writing anything.
func (e *Engine) Apply(ctx context.Context, tx *sql.Tx, in ApplyInput) (*domain.Product, error) {
	product, err := e.productRepo.FindByIDForUpdate(ctx, tx, in.ProductID)
	if err != nil {
		return nil, err
	}

	if in.Delta == 0 {
		return product, nil
	}

	if in.EnforceNonNegative && in.Delta < 0 && product.CurrentStock < -in.Delta {
		return nil, apperrors.NewInsufficientStockError(product.CurrentStock)
	}

	if err := e.productRepo.ApplyStockDelta(ctx, tx, in.ProductID, in.Delta); err != nil {
		return nil, err
	}
	product.CurrentStock += in.Delta

	entryType := domain.EntryTypeIn
	quantity := in.Delta
	if in.Delta < 0 {
		entryType = domain.EntryTypeOut
		quantity = -in.Delta
	}

	if err := e.insertEntry(ctx, tx, in, entryType, quantity); err != nil {
		return nil, err
	}

	e.logger.Info("stock delta applied",
		zap.Int("productId", in.ProductID),
		zap.Int("delta", in.Delta),
		zap.String("entryType", entryType),
		zap.Int("currentStock", product.CurrentStock),
	)

	return product, nil
}

// AdjustInput is a manual stock adjustment. Quantity is an unsigned
// magnitude; EntryType decides the direction (In adds, Out subtracts,
// Adjustment logs without moving the counter).
type AdjustInput struct {
	ProductID  int
	Quantity   int
	EntryType  string
	Notes      string
	SupplierID *int
	Actor      domain.Actor
}

// Adjust applies a manual adjustment inside the caller's transaction.
// Unlike Apply, an Adjustment-type entry is logged even though the counter
// does not move. A zero quantity writes nothing at all.
func (e *Engine) Adjust(ctx context.Context, tx *sql.Tx, in AdjustInput) (*domain.Product, error) {
	if !domain.IsValidEntryType(in.EntryType) {
		return nil, apperrors.NewValidationError("invalid entry type", apperrors.ValidationDetail{
			Field:   "type",
			Message: "type must be one of In, Out, Adjustment",
		})
	}
	if in.Quantity < 0 {
		return nil, apperrors.NewValidationError("invalid quantity", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be a positive magnitude",
		})
	}

	product, err := e.productRepo.FindByIDForUpdate(ctx, tx, in.ProductID)
	if err != nil {
		return nil, err
	}

	if in.Quantity == 0 {
		return product, nil
	}

	var delta int
	switch in.EntryType {
	case domain.EntryTypeIn:
		delta = in.Quantity
	case domain.EntryTypeOut:
		delta = -in.Quantity
	}

	if delta != 0 {
		if err := e.productRepo.ApplyStockDelta(ctx, tx, in.ProductID, delta); err != nil {
			return nil, err
		}
		product.CurrentStock += delta
	}

	apply := ApplyInput{
		ProductID:  in.ProductID,
		Notes:      in.Notes,
		SupplierID: in.SupplierID,
		Actor:      in.Actor,
	}
	if err := e.insertEntry(ctx, tx, apply, in.EntryType, in.Quantity); err != nil {
		return nil, err
	}

	e.logger.Info("stock adjusted",
		zap.Int("productId", in.ProductID),
		zap.String("entryType", in.EntryType),
		zap.Int("quantity", in.Quantity),
		zap.Int("currentStock", product.CurrentStock),
	)

	return product, nil
}

func (e *Engine) insertEntry(ctx context.Context, tx *sql.Tx, in ApplyInput, entryType string, quantity int) error {
	entry := domain.StockEntry{
		ProductID:  in.ProductID,
		EntryType:  entryType,
		Quantity:   quantity,
		SupplierID: in.SupplierID,
		Notes:      in.Notes,
		RecordedBy: in.Actor.UserID,
	}
	_, err := e.entryRepo.Insert(ctx, tx, entry)
	return err
}
