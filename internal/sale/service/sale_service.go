package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockledger/internal/domain"
	"stockledger/internal/ident"
	"stockledger/internal/supply"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type SaleRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, sale domain.Sale) (int, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Sale, error)
	UpdateSupply(ctx context.Context, tx *sql.Tx, id int, quantitySupplied int, status string) error
}

type StockEngine interface {
	Apply(ctx context.Context, tx *sql.Tx, in supply.ApplyInput) (*domain.Product, error)
}

type CreateSaleInput struct {
	ProductID          int
	CustomerID         int
	QuantityOrdered    int
	QuantitySupplied   int
	UnitPrice          decimal.Decimal
	LPOQuotationNumber string
	DeliveryNumber     string
	Notes              string
	Actor              domain.Actor
}

type UpdateSupplyInput struct {
	SaleID           int
	QuantitySupplied int
	// ExpectedStatus is the client's view of the resulting status. It is
	// never written; when present it must agree with the derived status.
	ExpectedStatus *string
	Actor          domain.Actor
}

// SaleService runs the transactional half of sale mutations: every call
// owns exactly one transaction in which the sale row, the product counter
// and the ledger entry change together.
type SaleService struct {
	db        TransactionManager
	saleRepo  SaleRepository
	engine    StockEngine
	numbers   ident.NumberGenerator
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewSaleService(
	db TransactionManager,
	saleRepo SaleRepository,
	engine StockEngine,
	numbers ident.NumberGenerator,
	logger *zap.Logger,
	txTimeout time.Duration,
) *SaleService {
	return &SaleService{
		db:        db,
		saleRepo:  saleRepo,
		engine:    engine,
		numbers:   numbers,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

func (s *SaleService) Create(ctx context.Context, in CreateSaleInput) (*domain.Sale, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	sale := domain.Sale{
		SaleNumber:         s.numbers.Next(ident.PrefixSale),
		ProductID:          in.ProductID,
		CustomerID:         in.CustomerID,
		QuantityOrdered:    in.QuantityOrdered,
		QuantitySupplied:   in.QuantitySupplied,
		SupplyStatus:       domain.DeriveSupplyStatus(in.QuantitySupplied, in.QuantityOrdered),
		UnitPrice:          in.UnitPrice,
		TotalAmount:        in.UnitPrice.Mul(decimal.NewFromInt(int64(in.QuantityOrdered))),
		LPOQuotationNumber: in.LPOQuotationNumber,
		DeliveryNumber:     in.DeliveryNumber,
		Notes:              in.Notes,
		RecordedBy:         in.Actor.UserID,
	}

	id, err := s.saleRepo.Insert(txCtx, tx, sale)
	if err != nil {
		return nil, err
	}
	sale.ID = id

	if in.QuantitySupplied > 0 {
		_, err = s.engine.Apply(txCtx, tx, supply.ApplyInput{
			ProductID:          in.ProductID,
			Delta:              -in.QuantitySupplied,
			Notes:              fmt.Sprintf("Initial supply for Sale #%s", sale.SaleNumber),
			Actor:              in.Actor,
			EnforceNonNegative: true,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit sale creation", zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("saleNumber", sale.SaleNumber),
		zap.Int("quantityOrdered", sale.QuantityOrdered),
		zap.Int("quantitySupplied", sale.QuantitySupplied),
	)

	sale.CreatedAt = time.Now()
	sale.UpdatedAt = sale.CreatedAt
	return &sale, nil
}

func (s *SaleService) UpdateSupply(ctx context.Context, in UpdateSupplyInput) (*domain.Sale, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	sale, err := s.saleRepo.FindByIDForUpdate(txCtx, tx, in.SaleID)
	if err != nil {
		return nil, err
	}

	newStatus, err := validateSupplyUpdate(sale, in)
	if err != nil {
		return nil, err
	}

	diff := in.QuantitySupplied - sale.QuantitySupplied
	if diff != 0 {
		notes := fmt.Sprintf("Supply update for Sale #%s", sale.SaleNumber)
		if diff < 0 {
			notes = fmt.Sprintf("Supply reversal for Sale #%s", sale.SaleNumber)
		}

		_, err = s.engine.Apply(txCtx, tx, supply.ApplyInput{
			ProductID:          sale.ProductID,
			Delta:              -diff,
			Notes:              notes,
			Actor:              in.Actor,
			EnforceNonNegative: diff > 0,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.saleRepo.UpdateSupply(txCtx, tx, sale.ID, in.QuantitySupplied, newStatus); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit supply update", zap.Int("saleId", in.SaleID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("supply updated",
		zap.String("saleNumber", sale.SaleNumber),
		zap.Int("quantitySupplied", in.QuantitySupplied),
		zap.String("supplyStatus", newStatus),
	)

	sale.QuantitySupplied = in.QuantitySupplied
	sale.SupplyStatus = newStatus
	return sale, nil
}
