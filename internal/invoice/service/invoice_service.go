package service

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/ident"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type InvoiceRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, inv domain.Invoice) (int, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Invoice, error)
	UpdatePayment(ctx context.Context, tx *sql.Tx, id int, paid decimal.Decimal, status string) error
}

type InvoiceItemRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, item domain.InvoiceItem) (int, error)
}

type PaymentRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, payment domain.Payment) (int, error)
}

type CreateInvoiceItemInput struct {
	ProductID int
	Quantity  int
	UnitPrice decimal.Decimal
}

type CreateInvoiceInput struct {
	CustomerID int
	DueDate    *time.Time
	Notes      string
	Items      []CreateInvoiceItemInput
	Actor      domain.Actor
}

type RecordPaymentInput struct {
	InvoiceID       int
	Amount          decimal.Decimal
	PaymentMethod   string
	ReferenceNumber string
	Notes           string
	Actor           domain.Actor
}

// InvoiceService owns the invoice and payment transactions. Totals and
// statuses are always computed here, never taken from the request.
type InvoiceService struct {
	db          TransactionManager
	invoiceRepo InvoiceRepository
	itemRepo    InvoiceItemRepository
	paymentRepo PaymentRepository
	numbers     ident.NumberGenerator
	now         func() time.Time
	logger      *zap.Logger
	txTimeout   time.Duration
}

func NewInvoiceService(
	db TransactionManager,
	invoiceRepo InvoiceRepository,
	itemRepo InvoiceItemRepository,
	paymentRepo PaymentRepository,
	numbers ident.NumberGenerator,
	now func() time.Time,
	logger *zap.Logger,
	txTimeout time.Duration,
) *InvoiceService {
	return &InvoiceService{
		db:          db,
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		paymentRepo: paymentRepo,
		numbers:     numbers,
		now:         now,
		logger:      logger,
		txTimeout:   txTimeout,
	}
}

func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*domain.Invoice, []domain.InvoiceItem, error) {
	items, total, err := buildItems(in.Items)
	if err != nil {
		return nil, nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, nil, err
	}
	defer tx.Rollback()

	inv := domain.Invoice{
		InvoiceNumber: s.numbers.Next(ident.PrefixInvoice),
		CustomerID:    in.CustomerID,
		TotalAmount:   total,
		PaidAmount:    decimal.Zero,
		Status:        domain.InvoiceStatusOutstanding,
		DueDate:       in.DueDate,
		Notes:         in.Notes,
		CreatedBy:     in.Actor.UserID,
	}

	id, err := s.invoiceRepo.Insert(txCtx, tx, inv)
	if err != nil {
		return nil, nil, err
	}
	inv.ID = id

	for i := range items {
		items[i].InvoiceID = id
		itemID, err := s.itemRepo.Insert(txCtx, tx, items[i])
		if err != nil {
			return nil, nil, err
		}
		items[i].ID = itemID
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit invoice creation", zap.Error(err))
		return nil, nil, err
	}

	s.logger.Info("invoice created",
		zap.String("invoiceNumber", inv.InvoiceNumber),
		zap.Int("items", len(items)),
		zap.String("totalAmount", total.StringFixed(2)),
	)

	inv.CreatedAt = s.now()
	inv.UpdatedAt = inv.CreatedAt
	return &inv, items, nil
}

// buildItems validates the request lines and computes each subtotal and
// the invoice total.
func buildItems(inputs []CreateInvoiceItemInput) ([]domain.InvoiceItem, decimal.Decimal, error) {
	var details []apperrors.ValidationDetail

	if len(inputs) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	for idx, in := range inputs {
		if in.ProductID <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].productId",
				Message: "productId must be a positive integer",
			})
		}
		if in.Quantity <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must be a positive integer",
			})
		}
		if in.UnitPrice.LessThanOrEqual(decimal.Zero) {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].unitPrice",
				Message: "unitPrice must be greater than 0",
			})
		}
	}

	if len(details) > 0 {
		return nil, decimal.Zero, apperrors.NewValidationError("validation failed", details...)
	}

	items := make([]domain.InvoiceItem, len(inputs))
	total := decimal.Zero
	for i, in := range inputs {
		subtotal := in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
		items[i] = domain.InvoiceItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Subtotal:  subtotal,
		}
		total = total.Add(subtotal)
	}

	return items, total, nil
}

func (s *InvoiceService) RecordPayment(ctx context.Context, in RecordPaymentInput) (*domain.Invoice, error) {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidationError("invalid amount", apperrors.ValidationDetail{
			Field:   "amount",
			Message: "amount must be greater than 0",
		})
	}
	if !domain.IsValidPaymentMethod(in.PaymentMethod) {
		return nil, apperrors.NewValidationError("invalid payment method", apperrors.ValidationDetail{
			Field:   "paymentMethod",
			Message: "paymentMethod is not recognised",
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

	inv, err := s.invoiceRepo.FindByIDForUpdate(txCtx, tx, in.InvoiceID)
	if err != nil {
		return nil, err
	}

	payment := domain.Payment{
		InvoiceID:       inv.ID,
		Amount:          in.Amount,
		PaymentMethod:   in.PaymentMethod,
		ReferenceNumber: in.ReferenceNumber,
		PaymentDate:     s.now(),
		Notes:           in.Notes,
		RecordedBy:      in.Actor.UserID,
	}

	if _, err := s.paymentRepo.Insert(txCtx, tx, payment); err != nil {
		return nil, err
	}

	newPaid := inv.PaidAmount.Add(in.Amount)
	newStatus := domain.DeriveInvoiceStatus(newPaid, inv.TotalAmount)

	if err := s.invoiceRepo.UpdatePayment(txCtx, tx, inv.ID, newPaid, newStatus); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit payment", zap.Int("invoiceId", in.InvoiceID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("invoiceNumber", inv.InvoiceNumber),
		zap.String("amount", in.Amount.StringFixed(2)),
		zap.String("status", newStatus),
	)

	inv.PaidAmount = newPaid
	inv.Status = newStatus
	return inv, nil
}
