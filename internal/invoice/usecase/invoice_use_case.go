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
	"stockledger/internal/invoice/service"
)

type InvoiceMutationService interface {
	Create(ctx context.Context, in service.CreateInvoiceInput) (*domain.Invoice, []domain.InvoiceItem, error)
	RecordPayment(ctx context.Context, in service.RecordPaymentInput) (*domain.Invoice, error)
}

type InvoiceReader interface {
	FindByID(ctx context.Context, id int) (*domain.Invoice, error)
	ListOutstanding(ctx context.Context) ([]domain.Invoice, error)
}

type InvoiceItemReader interface {
	ListByInvoice(ctx context.Context, invoiceID int) ([]domain.InvoiceItem, error)
}

type PaymentReader interface {
	ListByInvoice(ctx context.Context, invoiceID int) ([]domain.Payment, error)
}

type CustomerReader interface {
	FindByID(ctx context.Context, id int) (*domain.Customer, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, action string, actor domain.Actor, description string)
}

// InvoiceDetail bundles an invoice with its lines and payment history.
type InvoiceDetail struct {
	Invoice  *domain.Invoice
	Items    []domain.InvoiceItem
	Payments []domain.Payment
}

type InvoiceUseCase struct {
	invoiceSvc       InvoiceMutationService
	invoiceReader    InvoiceReader
	itemReader       InvoiceItemReader
	paymentReader    PaymentReader
	customerReader   CustomerReader
	audit            AuditRecorder
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewInvoiceUseCase(
	invoiceSvc InvoiceMutationService,
	invoiceReader InvoiceReader,
	itemReader InvoiceItemReader,
	paymentReader PaymentReader,
	customerReader CustomerReader,
	audit AuditRecorder,
	logger *zap.Logger,
	maxRetryAttempts int,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		invoiceSvc:       invoiceSvc,
		invoiceReader:    invoiceReader,
		itemReader:       itemReader,
		paymentReader:    paymentReader,
		customerReader:   customerReader,
		audit:            audit,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *InvoiceUseCase) Create(ctx context.Context, actor domain.Actor, in service.CreateInvoiceInput) (*domain.Invoice, []domain.InvoiceItem, error) {
	uc.logger.Info("invoice creation started",
		zap.Int("customerId", in.CustomerID),
		zap.Int("items", len(in.Items)),
	)

	customer, err := uc.customerReader.FindByID(ctx, in.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	if !customer.IsActive {
		return nil, nil, apperrors.NewValidationError("customer is inactive", apperrors.ValidationDetail{
			Field:   "customerId",
			Message: "customer is not active",
		})
	}

	in.Actor = actor

	var (
		inv   *domain.Invoice
		items []domain.InvoiceItem
	)
	err = uc.withRetry(ctx, func() error {
		var innerErr error
		inv, items, innerErr = uc.invoiceSvc.Create(ctx, in)
		return innerErr
	})
	if err != nil {
		return nil, nil, err
	}

	uc.audit.Record(ctx, domain.AuditActionInvoiceCreated, actor,
		fmt.Sprintf("Invoice #%s created for customer %d, total %s", inv.InvoiceNumber, inv.CustomerID, inv.TotalAmount.StringFixed(2)))

	return inv, items, nil
}

func (uc *InvoiceUseCase) RecordPayment(ctx context.Context, actor domain.Actor, in service.RecordPaymentInput) (*domain.Invoice, error) {
	uc.logger.Info("payment recording started",
		zap.Int("invoiceId", in.InvoiceID),
		zap.String("amount", in.Amount.StringFixed(2)),
	)

	in.Actor = actor

	var inv *domain.Invoice
	err := uc.withRetry(ctx, func() error {
		var innerErr error
		inv, innerErr = uc.invoiceSvc.RecordPayment(ctx, in)
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, domain.AuditActionPaymentRecorded, actor,
		fmt.Sprintf("Payment of %s against Invoice #%s (%s)", in.Amount.StringFixed(2), inv.InvoiceNumber, inv.Status))

	return inv, nil
}

func (uc *InvoiceUseCase) GetDetail(ctx context.Context, id int) (*InvoiceDetail, error) {
	inv, err := uc.invoiceReader.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := uc.itemReader.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	payments, err := uc.paymentReader.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	return &InvoiceDetail{Invoice: inv, Items: items, Payments: payments}, nil
}

func (uc *InvoiceUseCase) ListOutstanding(ctx context.Context) ([]domain.Invoice, error) {
	return uc.invoiceReader.ListOutstanding(ctx)
}

func (uc *InvoiceUseCase) withRetry(ctx context.Context, fn func() error) error {
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
