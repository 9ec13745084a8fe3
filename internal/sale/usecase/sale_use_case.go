package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/sale/service"
)

type SaleMutationService interface {
	Create(ctx context.Context, in service.CreateSaleInput) (*domain.Sale, error)
	UpdateSupply(ctx context.Context, in service.UpdateSupplyInput) (*domain.Sale, error)
}

type SaleReader interface {
	FindByID(ctx context.Context, id int) (*domain.Sale, error)
	ListOutstanding(ctx context.Context) ([]domain.Sale, error)
	ListOutstandingByCustomer(ctx context.Context, customerID int) ([]domain.Sale, error)
}

type ProductReader interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
}

type CustomerReader interface {
	FindByID(ctx context.Context, id int) (*domain.Customer, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, action string, actor domain.Actor, description string)
}

type CreateSaleCommand struct {
	ProductID          int
	CustomerID         int
	QuantityOrdered    int
	QuantitySupplied   int
	UnitPrice          *decimal.Decimal
	LPOQuotationNumber string
	DeliveryNumber     string
	Notes              string
}

type UpdateSupplyCommand struct {
	SaleID           int
	QuantitySupplied int
	ExpectedStatus   *string
}

type SaleUseCase struct {
	saleSvc          SaleMutationService
	saleReader       SaleReader
	productReader    ProductReader
	customerReader   CustomerReader
	audit            AuditRecorder
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewSaleUseCase(
	saleSvc SaleMutationService,
	saleReader SaleReader,
	productReader ProductReader,
	customerReader CustomerReader,
	audit AuditRecorder,
	logger *zap.Logger,
	maxRetryAttempts int,
) *SaleUseCase {
	return &SaleUseCase{
		saleSvc:          saleSvc,
		saleReader:       saleReader,
		productReader:    productReader,
		customerReader:   customerReader,
		audit:            audit,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *SaleUseCase) Create(ctx context.Context, actor domain.Actor, cmd CreateSaleCommand) (*domain.Sale, error) {
	uc.logger.Info("sale creation started",
		zap.Int("productId", cmd.ProductID),
		zap.Int("customerId", cmd.CustomerID),
		zap.Int("quantityOrdered", cmd.QuantityOrdered),
	)

	product, err := uc.productReader.FindByID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperrors.NewValidationError("product is inactive", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "product is not active",
		})
	}

	customer, err := uc.customerReader.FindByID(ctx, cmd.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, apperrors.NewValidationError("customer is inactive", apperrors.ValidationDetail{
			Field:   "customerId",
			Message: "customer is not active",
		})
	}

	unitPrice := product.UnitPrice
	if cmd.UnitPrice != nil {
		unitPrice = *cmd.UnitPrice
	}
	if unitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidationError("invalid unit price", apperrors.ValidationDetail{
			Field:   "unitPrice",
			Message: "unitPrice must be greater than 0",
		})
	}

	input := service.CreateSaleInput{
		ProductID:          cmd.ProductID,
		CustomerID:         cmd.CustomerID,
		QuantityOrdered:    cmd.QuantityOrdered,
		QuantitySupplied:   cmd.QuantitySupplied,
		UnitPrice:          unitPrice,
		LPOQuotationNumber: cmd.LPOQuotationNumber,
		DeliveryNumber:     cmd.DeliveryNumber,
		Notes:              cmd.Notes,
		Actor:              actor,
	}

	var sale *domain.Sale
	err = uc.withRetry(ctx, func() error {
		var innerErr error
		sale, innerErr = uc.saleSvc.Create(ctx, input)
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, domain.AuditActionSaleCreated, actor,
		fmt.Sprintf("Sale #%s created: %d x product %d", sale.SaleNumber, sale.QuantityOrdered, sale.ProductID))

	return sale, nil
}

func (uc *SaleUseCase) UpdateSupply(ctx context.Context, actor domain.Actor, cmd UpdateSupplyCommand) (*domain.Sale, error) {
	uc.logger.Info("supply update started",
		zap.Int("saleId", cmd.SaleID),
		zap.Int("quantitySupplied", cmd.QuantitySupplied),
	)

	if cmd.ExpectedStatus != nil && !domain.IsValidSupplyStatus(*cmd.ExpectedStatus) {
		return nil, apperrors.NewValidationError("invalid supply status", apperrors.ValidationDetail{
			Field:   "supplyStatus",
			Message: "supplyStatus must be one of Not Supplied, Partially Supplied, Supplied",
		})
	}

	input := service.UpdateSupplyInput{
		SaleID:           cmd.SaleID,
		QuantitySupplied: cmd.QuantitySupplied,
		ExpectedStatus:   cmd.ExpectedStatus,
		Actor:            actor,
	}

	var sale *domain.Sale
	err := uc.withRetry(ctx, func() error {
		var innerErr error
		sale, innerErr = uc.saleSvc.UpdateSupply(ctx, input)
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, domain.AuditActionSupplyUpdated, actor,
		fmt.Sprintf("Sale #%s supply updated to %d (%s)", sale.SaleNumber, sale.QuantitySupplied, sale.SupplyStatus))

	return sale, nil
}

func (uc *SaleUseCase) GetByID(ctx context.Context, id int) (*domain.Sale, error) {
	return uc.saleReader.FindByID(ctx, id)
}

func (uc *SaleUseCase) ListOutstanding(ctx context.Context) ([]domain.Sale, error) {
	return uc.saleReader.ListOutstanding(ctx)
}

func (uc *SaleUseCase) ListOutstandingByCustomer(ctx context.Context, customerID int) ([]domain.Sale, error) {
	return uc.saleReader.ListOutstandingByCustomer(ctx, customerID)
}

// withRetry re-runs the mutation on MySQL deadlock or lock-wait timeout,
// with jittered backoff. All other errors are terminal for the request.
func (uc *SaleUseCase) withRetry(ctx context.Context, fn func() error) error {
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
