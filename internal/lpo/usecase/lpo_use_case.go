package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/lpo/service"
)

type LPOMutationService interface {
	Create(ctx context.Context, in service.CreateLPOInput) (*domain.LPO, error)
	RecordDelivery(ctx context.Context, in service.RecordDeliveryInput) (*domain.LPO, error)
	Cancel(ctx context.Context, lpoID int, actor domain.Actor) (*domain.LPO, error)
}

type LPOReader interface {
	FindByID(ctx context.Context, id int) (*domain.LPO, error)
	ListPending(ctx context.Context) ([]domain.LPO, error)
}

type SupplierReader interface {
	FindByID(ctx context.Context, id int) (*domain.Supplier, error)
}

type ProductReader interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, action string, actor domain.Actor, description string)
}

type LPOUseCase struct {
	lpoSvc           LPOMutationService
	lpoReader        LPOReader
	supplierReader   SupplierReader
	productReader    ProductReader
	audit            AuditRecorder
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewLPOUseCase(
	lpoSvc LPOMutationService,
	lpoReader LPOReader,
	supplierReader SupplierReader,
	productReader ProductReader,
	audit AuditRecorder,
	logger *zap.Logger,
	maxRetryAttempts int,
) *LPOUseCase {
	return &LPOUseCase{
		lpoSvc:           lpoSvc,
		lpoReader:        lpoReader,
		supplierReader:   supplierReader,
		productReader:    productReader,
		audit:            audit,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *LPOUseCase) Create(ctx context.Context, actor domain.Actor, in service.CreateLPOInput) (*domain.LPO, error) {
	uc.logger.Info("lpo creation started",
		zap.Int("supplierId", in.SupplierID),
		zap.Int("productId", in.ProductID),
		zap.Int("orderedQuantity", in.OrderedQuantity),
	)

	supplier, err := uc.supplierReader.FindByID(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.IsActive {
		return nil, apperrors.NewValidationError("supplier is inactive", apperrors.ValidationDetail{
			Field:   "supplierId",
			Message: "supplier is not active",
		})
	}

	product, err := uc.productReader.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperrors.NewValidationError("product is inactive", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "product is not active",
		})
	}

	in.Actor = actor

	var lpo *domain.LPO
	err = uc.withRetry(ctx, func() error {
		var innerErr error
		lpo, innerErr = uc.lpoSvc.Create(ctx, in)
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, domain.AuditActionLPOUpdated, actor,
		fmt.Sprintf("LPO #%s created: %d x product %d from supplier %d",
			lpo.LPONumber, lpo.OrderedQuantity, lpo.ProductID, lpo.SupplierID))

	return lpo, nil
}

func (uc *LPOUseCase) RecordDelivery(ctx context.Context, actor domain.Actor, in service.RecordDeliveryInput) (*domain.LPO, error) {
	uc.logger.Info("delivery recording started",
		zap.Int("lpoId", in.LPOID),
		zap.Int("deliveredQuantity", in.DeliveredQuantity),
	)

	in.Actor = actor

	var lpo *domain.LPO
	err := uc.withRetry(ctx, func() error {
		var innerErr error
		lpo, innerErr = uc.lpoSvc.RecordDelivery(ctx, in)
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, domain.AuditActionLPOUpdated, actor,
		fmt.Sprintf("LPO #%s delivery of %d recorded (%s)", lpo.LPONumber, in.DeliveredQuantity, lpo.Status))

	return lpo, nil
}

func (uc *LPOUseCase) Cancel(ctx context.Context, actor domain.Actor, lpoID int) (*domain.LPO, error) {
	var lpo *domain.LPO
	err := uc.withRetry(ctx, func() error {
		var innerErr error
		lpo, innerErr = uc.lpoSvc.Cancel(ctx, lpoID, actor)
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, domain.AuditActionLPOUpdated, actor,
		fmt.Sprintf("LPO #%s cancelled", lpo.LPONumber))

	return lpo, nil
}

func (uc *LPOUseCase) GetByID(ctx context.Context, id int) (*domain.LPO, error) {
	return uc.lpoReader.FindByID(ctx, id)
}

func (uc *LPOUseCase) ListPending(ctx context.Context) ([]domain.LPO, error) {
	return uc.lpoReader.ListPending(ctx)
}

func (uc *LPOUseCase) withRetry(ctx context.Context, fn func() error) error {
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= uc.maxRetryAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		if !isDeadlockError(err) {
			return err
		}

		if attempt == uc.maxRetryAttempts {
			break
		}

		backoff := backoffs[min(attempt, len(backoffs))-1]
		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		uc.logger.Warn("deadlock detected, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", uc.maxRetryAttempts),
		)

		select {
		case <-time.After(jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return apperrors.NewDeadlockError("max retries exceeded")
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
