package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/ident"
	"stockledger/internal/supply"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type LPORepository interface {
	Insert(ctx context.Context, tx *sql.Tx, lpo domain.LPO) (int, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.LPO, error)
	UpdateDelivery(ctx context.Context, tx *sql.Tx, lpo domain.LPO) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int, status string) error
}

type StockEngine interface {
	Apply(ctx context.Context, tx *sql.Tx, in supply.ApplyInput) (*domain.Product, error)
}

type CreateLPOInput struct {
	SupplierID       int
	ProductID        int
	OrderedQuantity  int
	ExpectedDelivery *time.Time
	Notes            string
	Actor            domain.Actor
}

type RecordDeliveryInput struct {
	LPOID             int
	DeliveredQuantity int
	Actor             domain.Actor
}

// LPOService owns the purchase-order transactions. Recording a delivery
// moves the LPO forward and credits stock in the same transaction.
type LPOService struct {
	db        TransactionManager
	lpoRepo   LPORepository
	engine    StockEngine
	numbers   ident.NumberGenerator
	now       func() time.Time
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewLPOService(
	db TransactionManager,
	lpoRepo LPORepository,
	engine StockEngine,
	numbers ident.NumberGenerator,
	now func() time.Time,
	logger *zap.Logger,
	txTimeout time.Duration,
) *LPOService {
	return &LPOService{
		db:        db,
		lpoRepo:   lpoRepo,
		engine:    engine,
		numbers:   numbers,
		now:       now,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

func (s *LPOService) Create(ctx context.Context, in CreateLPOInput) (*domain.LPO, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	lpo := domain.LPO{
		LPONumber:        s.numbers.Next(ident.PrefixLPO),
		SupplierID:       in.SupplierID,
		ProductID:        in.ProductID,
		OrderedQuantity:  in.OrderedQuantity,
		Status:           domain.LPOStatusPending,
		OrderDate:        s.now(),
		ExpectedDelivery: in.ExpectedDelivery,
		Notes:            in.Notes,
		CreatedBy:        in.Actor.UserID,
	}

	id, err := s.lpoRepo.Insert(txCtx, tx, lpo)
	if err != nil {
		return nil, err
	}
	lpo.ID = id

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit lpo creation", zap.Error(err))
		return nil, err
	}

	s.logger.Info("lpo created",
		zap.String("lpoNumber", lpo.LPONumber),
		zap.Int("orderedQuantity", lpo.OrderedQuantity),
	)

	lpo.CreatedAt = s.now()
	lpo.UpdatedAt = lpo.CreatedAt
	return &lpo, nil
}

// RecordDelivery accepts a partial or final delivery against an open LPO.
// The LPO row is locked first, then stock is credited through the engine
// so the counter and the ledger move together.
func (s *LPOService) RecordDelivery(ctx context.Context, in RecordDeliveryInput) (*domain.LPO, error) {
	if in.DeliveredQuantity <= 0 {
		return nil, apperrors.NewValidationError("invalid quantity", apperrors.ValidationDetail{
			Field:   "deliveredQuantity",
			Message: "deliveredQuantity must be a positive integer",
		})
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	lpo, err := s.lpoRepo.FindByIDForUpdate(txCtx, tx, in.LPOID)
	if err != nil {
		return nil, err
	}

	switch lpo.Status {
	case domain.LPOStatusCancelled:
		return nil, apperrors.NewConflictError(fmt.Sprintf("LPO #%s is cancelled", lpo.LPONumber))
	case domain.LPOStatusCompleted:
		return nil, apperrors.NewConflictError(fmt.Sprintf("LPO #%s is already completed", lpo.LPONumber))
	}

	if lpo.DeliveredQuantity+in.DeliveredQuantity > lpo.OrderedQuantity {
		return nil, apperrors.NewValidationError("over-delivery", apperrors.ValidationDetail{
			Field:   "deliveredQuantity",
			Message: fmt.Sprintf("deliveredQuantity exceeds pending quantity of %d", lpo.PendingQuantity()),
		})
	}

	lpo.DeliveredQuantity += in.DeliveredQuantity
	lpo.Status = domain.DeriveLPOStatus(lpo.DeliveredQuantity, lpo.OrderedQuantity)
	if lpo.Status == domain.LPOStatusCompleted && lpo.ActualDelivery == nil {
		today := s.now()
		lpo.ActualDelivery = &today
	}

	supplierID := lpo.SupplierID
	_, err = s.engine.Apply(txCtx, tx, supply.ApplyInput{
		ProductID:  lpo.ProductID,
		Delta:      in.DeliveredQuantity,
		Notes:      fmt.Sprintf("Delivery for LPO #%s", lpo.LPONumber),
		SupplierID: &supplierID,
		Actor:      in.Actor,
	})
	if err != nil {
		return nil, err
	}

	if err := s.lpoRepo.UpdateDelivery(txCtx, tx, *lpo); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit delivery", zap.Int("lpoId", in.LPOID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("delivery recorded",
		zap.String("lpoNumber", lpo.LPONumber),
		zap.Int("deliveredQuantity", in.DeliveredQuantity),
		zap.String("status", lpo.Status),
	)

	return lpo, nil
}

// Cancel is an explicit transition; derived statuses never produce it.
// Delivered stock is not reversed: what arrived stays on the shelf.
func (s *LPOService) Cancel(ctx context.Context, lpoID int, actor domain.Actor) (*domain.LPO, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	lpo, err := s.lpoRepo.FindByIDForUpdate(txCtx, tx, lpoID)
	if err != nil {
		return nil, err
	}

	switch lpo.Status {
	case domain.LPOStatusCancelled:
		return nil, apperrors.NewConflictError(fmt.Sprintf("LPO #%s is already cancelled", lpo.LPONumber))
	case domain.LPOStatusCompleted:
		return nil, apperrors.NewConflictError(fmt.Sprintf("LPO #%s is completed and cannot be cancelled", lpo.LPONumber))
	}

	if err := s.lpoRepo.UpdateStatus(txCtx, tx, lpo.ID, domain.LPOStatusCancelled); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit cancellation", zap.Int("lpoId", lpoID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("lpo cancelled", zap.String("lpoNumber", lpo.LPONumber))

	lpo.Status = domain.LPOStatusCancelled
	return lpo, nil
}
