package supply

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Service owns the transaction around manual stock adjustments. Sale and
// LPO mutations run the engine inside their own module transactions; manual
// adjustment is the only operation whose transaction starts here.
type Service struct {
	db        TransactionManager
	engine    *Engine
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewService(db TransactionManager, engine *Engine, logger *zap.Logger, txTimeout time.Duration) *Service {
	return &Service{
		db:        db,
		engine:    engine,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

// AdjustStock is staff-only: it bypasses the sale/LPO state machines and
// writes straight to the ledger.
func (s *Service) AdjustStock(ctx context.Context, in AdjustInput) (*domain.Product, error) {
	if !in.Actor.Staff {
		return nil, apperrors.NewForbiddenError("staff privileges required to adjust stock")
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// Rollback is a no-op after a successful commit.
	defer tx.Rollback()

	product, err := s.engine.Adjust(txCtx, tx, in)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit adjustment", zap.Int("productId", in.ProductID), zap.Error(err))
		return nil, err
	}

	return product, nil
}
