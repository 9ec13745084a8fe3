package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/ident"
	invoicerepo "stockledger/internal/invoice/repository"
)

var (
	testActor = domain.Actor{UserID: "u1", Name: "Tester", Staff: true}
	testNow   = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
)

func newInvoiceService(t *testing.T) (*InvoiceService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	svc := NewInvoiceService(
		db,
		invoicerepo.NewMySQLInvoiceRepository(db),
		invoicerepo.NewMySQLInvoiceItemRepository(db),
		invoicerepo.NewMySQLPaymentRepository(db),
		ident.Fixed{Number: "INV-20250601-BBBBBB"},
		func() time.Time { return testNow },
		zap.NewNop(),
		2*time.Second,
	)

	return svc, mock, func() { db.Close() }
}

func invoiceRows(inv domain.Invoice) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "invoice_number", "customer_id", "total_amount", "paid_amount",
		"status", "due_date", "notes", "created_by", "created_at", "updated_at",
	}).AddRow(
		inv.ID, inv.InvoiceNumber, inv.CustomerID,
		inv.TotalAmount.StringFixed(2), inv.PaidAmount.StringFixed(2),
		inv.Status, inv.DueDate, inv.Notes, inv.CreatedBy, testNow, testNow,
	)
}

func TestInvoiceService_Create_ComputesTotalsServerSide(t *testing.T) {
	svc, mock, done := newInvoiceService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO invoices").
		WithArgs("INV-20250601-BBBBBB", 2,
			decimal.RequireFromString("1100"), decimal.Zero,
			domain.InvoiceStatusOutstanding, nil, "", "u1").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectExec("INSERT INTO invoice_items").
		WithArgs(4, 1, 2, decimal.RequireFromString("250"), decimal.RequireFromString("500")).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("INSERT INTO invoice_items").
		WithArgs(4, 3, 4, decimal.RequireFromString("150"), decimal.RequireFromString("600")).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	inv, items, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerID: 2,
		Items: []CreateInvoiceItemInput{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("250")},
			{ProductID: 3, Quantity: 4, UnitPrice: decimal.RequireFromString("150")},
		},
		Actor: testActor,
	})

	require.NoError(t, err)
	assert.Equal(t, 4, inv.ID)
	assert.Equal(t, "1100", inv.TotalAmount.String())
	assert.Equal(t, domain.InvoiceStatusOutstanding, inv.Status)
	require.Len(t, items, 2)
	assert.Equal(t, "500", items[0].Subtotal.String())
	assert.Equal(t, "600", items[1].Subtotal.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceService_Create_RejectsBadItems_BeforeTx(t *testing.T) {
	svc, mock, done := newInvoiceService(t)
	defer done()

	inv, items, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerID: 2,
		Items: []CreateInvoiceItemInput{
			{ProductID: 1, Quantity: 0, UnitPrice: decimal.RequireFromString("250")},
			{ProductID: 3, Quantity: 4, UnitPrice: decimal.Zero},
		},
		Actor: testActor,
	})

	assert.Nil(t, inv)
	assert.Nil(t, items)
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Details, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceService_Create_EmptyItems_Rejected(t *testing.T) {
	svc, _, done := newInvoiceService(t)
	defer done()

	_, _, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerID: 2,
		Actor:      testActor,
	})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestInvoiceService_RecordPayment_PartialThenDerivedStatus(t *testing.T) {
	svc, mock, done := newInvoiceService(t)
	defer done()

	existing := domain.Invoice{
		ID: 4, InvoiceNumber: "INV-20250601-BBBBBB", CustomerID: 2,
		TotalAmount: decimal.RequireFromString("1100"),
		PaidAmount:  decimal.Zero,
		Status:      domain.InvoiceStatusOutstanding,
		CreatedBy:   "u1",
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM invoices WHERE id = \\? FOR UPDATE").
		WithArgs(4).
		WillReturnRows(invoiceRows(existing))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(4, decimal.RequireFromString("500"), domain.PaymentMethodCash, "RCPT-9", testNow, "", "u1").
		WillReturnResult(sqlmock.NewResult(20, 1))
	mock.ExpectExec("UPDATE invoices SET paid_amount = \\?, status = \\?").
		WithArgs(decimal.RequireFromString("500"), domain.InvoiceStatusPartial, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	inv, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		InvoiceID:       4,
		Amount:          decimal.RequireFromString("500"),
		PaymentMethod:   domain.PaymentMethodCash,
		ReferenceNumber: "RCPT-9",
		Actor:           testActor,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPartial, inv.Status)
	assert.Equal(t, "500", inv.PaidAmount.String())
	assert.Equal(t, "600", inv.RemainingBalance().String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceService_RecordPayment_OverpaymentDerivesPaid(t *testing.T) {
	svc, mock, done := newInvoiceService(t)
	defer done()

	existing := domain.Invoice{
		ID: 4, InvoiceNumber: "INV-20250601-BBBBBB", CustomerID: 2,
		TotalAmount: decimal.RequireFromString("1100"),
		PaidAmount:  decimal.RequireFromString("600"),
		Status:      domain.InvoiceStatusPartial,
		CreatedBy:   "u1",
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM invoices WHERE id = \\? FOR UPDATE").
		WithArgs(4).
		WillReturnRows(invoiceRows(existing))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(4, decimal.RequireFromString("600"), domain.PaymentMethodBankTransfer, "", testNow, "", "u1").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("UPDATE invoices SET paid_amount = \\?, status = \\?").
		WithArgs(decimal.RequireFromString("1200"), domain.InvoiceStatusPaid, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	inv, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		InvoiceID:     4,
		Amount:        decimal.RequireFromString("600"),
		PaymentMethod: domain.PaymentMethodBankTransfer,
		Actor:         testActor,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.RemainingBalance().IsNegative())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceService_RecordPayment_NonPositiveAmount_Rejected(t *testing.T) {
	svc, _, done := newInvoiceService(t)
	defer done()

	inv, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		InvoiceID:     4,
		Amount:        decimal.Zero,
		PaymentMethod: domain.PaymentMethodCash,
		Actor:         testActor,
	})

	assert.Nil(t, inv)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestInvoiceService_RecordPayment_UnknownMethod_Rejected(t *testing.T) {
	svc, _, done := newInvoiceService(t)
	defer done()

	inv, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		InvoiceID:     4,
		Amount:        decimal.RequireFromString("100"),
		PaymentMethod: "Barter",
		Actor:         testActor,
	})

	assert.Nil(t, inv)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestInvoiceService_RecordPayment_UnknownInvoice(t *testing.T) {
	svc, mock, done := newInvoiceService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM invoices WHERE id = \\? FOR UPDATE").
		WithArgs(999).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	inv, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		InvoiceID:     999,
		Amount:        decimal.RequireFromString("100"),
		PaymentMethod: domain.PaymentMethodCash,
		Actor:         testActor,
	})

	assert.Nil(t, inv)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
