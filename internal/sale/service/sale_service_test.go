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

	catalogrepo "stockledger/internal/catalog/repository"
	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/ident"
	salerepo "stockledger/internal/sale/repository"
	"stockledger/internal/supply"
	supplyrepo "stockledger/internal/supply/repository"
)

var testActor = domain.Actor{UserID: "u1", Name: "Tester", Staff: true}

func productRows(stock int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "subcategory_id", "code", "name", "description", "unit_price",
		"current_stock", "minimum_stock", "is_active", "created_at", "updated_at",
	}).AddRow(1, 1, "CAP320", "Fire Cap 320", "", "150.00", stock, 10, true, now, now)
}

func saleRows(sale domain.Sale) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "sale_number", "product_id", "customer_id", "quantity_ordered",
		"quantity_supplied", "supply_status", "unit_price", "total_amount",
		"lpo_quotation_number", "delivery_number", "notes", "recorded_by",
		"created_at", "updated_at",
	}).AddRow(
		sale.ID, sale.SaleNumber, sale.ProductID, sale.CustomerID, sale.QuantityOrdered,
		sale.QuantitySupplied, sale.SupplyStatus, sale.UnitPrice.StringFixed(2), sale.TotalAmount.StringFixed(2),
		sale.LPOQuotationNumber, sale.DeliveryNumber, sale.Notes, sale.RecordedBy,
		now, now,
	)
}

func newSaleService(t *testing.T) (*SaleService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	engine := supply.NewEngine(
		catalogrepo.NewMySQLProductRepository(db),
		supplyrepo.NewMySQLStockEntryRepository(db),
		zap.NewNop(),
	)

	svc := NewSaleService(
		db,
		salerepo.NewMySQLSaleRepository(db),
		engine,
		ident.Fixed{Number: "SALE-20250101-AAAAAA"},
		zap.NewNop(),
		2*time.Second,
	)

	return svc, mock, func() { db.Close() }
}

func TestSaleService_Create_WithInitialSupply_DebitsStockInSameTx(t *testing.T) {
	svc, mock, done := newSaleService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sales").
		WithArgs("SALE-20250101-AAAAAA", 1, 2, 50, 20, domain.SupplyStatusPartiallySupplied,
			decimal.RequireFromString("150"), decimal.RequireFromString("7500"),
			"LPO-Q-9", "DN-4", "", "u1").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT (.+) FROM products WHERE id = \\? FOR UPDATE").
		WithArgs(1).
		WillReturnRows(productRows(100))
	mock.ExpectExec("UPDATE products SET current_stock = current_stock \\+ \\?").
		WithArgs(-20, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO stock_entries").
		WithArgs(1, domain.EntryTypeOut, 20, nil, "Initial supply for Sale #SALE-20250101-AAAAAA", "u1").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	sale, err := svc.Create(context.Background(), CreateSaleInput{
		ProductID:          1,
		CustomerID:         2,
		QuantityOrdered:    50,
		QuantitySupplied:   20,
		UnitPrice:          decimal.RequireFromString("150"),
		LPOQuotationNumber: "LPO-Q-9",
		DeliveryNumber:     "DN-4",
		Actor:              testActor,
	})

	require.NoError(t, err)
	assert.Equal(t, 7, sale.ID)
	assert.Equal(t, domain.SupplyStatusPartiallySupplied, sale.SupplyStatus)
	assert.Equal(t, "7500", sale.TotalAmount.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleService_Create_NoSupply_TouchesOnlySalesTable(t *testing.T) {
	svc, mock, done := newSaleService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sales").
		WithArgs("SALE-20250101-AAAAAA", 1, 2, 50, 0, domain.SupplyStatusNotSupplied,
			decimal.RequireFromString("150"), decimal.RequireFromString("7500"),
			"", "", "", "u1").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectCommit()

	sale, err := svc.Create(context.Background(), CreateSaleInput{
		ProductID:       1,
		CustomerID:      2,
		QuantityOrdered: 50,
		UnitPrice:       decimal.RequireFromString("150"),
		Actor:           testActor,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SupplyStatusNotSupplied, sale.SupplyStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleService_Create_InsufficientStock_RollsBack(t *testing.T) {
	svc, mock, done := newSaleService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sales").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery("SELECT (.+) FROM products WHERE id = \\? FOR UPDATE").
		WithArgs(1).
		WillReturnRows(productRows(5))
	mock.ExpectRollback()

	sale, err := svc.Create(context.Background(), CreateSaleInput{
		ProductID:        1,
		CustomerID:       2,
		QuantityOrdered:  50,
		QuantitySupplied: 20,
		UnitPrice:        decimal.RequireFromString("150"),
		Actor:            testActor,
	})

	assert.Nil(t, sale)
	ise, ok := apperrors.IsInsufficientStockError(err)
	require.True(t, ok)
	assert.Equal(t, 5, ise.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleService_UpdateSupply_IncreaseDebitsDifference(t *testing.T) {
	svc, mock, done := newSaleService(t)
	defer done()

	existing := domain.Sale{
		ID: 7, SaleNumber: "SALE-20250101-AAAAAA", ProductID: 1, CustomerID: 2,
		QuantityOrdered: 50, QuantitySupplied: 20,
		SupplyStatus: domain.SupplyStatusPartiallySupplied,
		UnitPrice:    decimal.RequireFromString("150"),
		TotalAmount:  decimal.RequireFromString("7500"),
		RecordedBy:   "u1",
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM sales WHERE id = \\? FOR UPDATE").
		WithArgs(7).
		WillReturnRows(saleRows(existing))
	mock.ExpectQuery("SELECT (.+) FROM products WHERE id = \\? FOR UPDATE").
		WithArgs(1).
		WillReturnRows(productRows(100))
	mock.ExpectExec("UPDATE products SET current_stock = current_stock \\+ \\?").
		WithArgs(-30, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO stock_entries").
		WithArgs(1, domain.EntryTypeOut, 30, nil, "Supply update for Sale #SALE-20250101-AAAAAA", "u1").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec("UPDATE sales SET quantity_supplied = \\?, supply_status = \\?").
		WithArgs(50, domain.SupplyStatusSupplied, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sale, err := svc.UpdateSupply(context.Background(), UpdateSupplyInput{
		SaleID:           7,
		QuantitySupplied: 50,
		Actor:            testActor,
	})

	require.NoError(t, err)
	assert.Equal(t, 50, sale.QuantitySupplied)
	assert.Equal(t, domain.SupplyStatusSupplied, sale.SupplyStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleService_UpdateSupply_DecreaseCreditsStockBack(t *testing.T) {
	svc, mock, done := newSaleService(t)
	defer done()

	existing := domain.Sale{
		ID: 7, SaleNumber: "SALE-20250101-AAAAAA", ProductID: 1, CustomerID: 2,
		QuantityOrdered: 50, QuantitySupplied: 20,
		SupplyStatus: domain.SupplyStatusPartiallySupplied,
		UnitPrice:    decimal.RequireFromString("150"),
		TotalAmount:  decimal.RequireFromString("7500"),
		RecordedBy:   "u1",
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM sales WHERE id = \\? FOR UPDATE").
		WithArgs(7).
		WillReturnRows(saleRows(existing))
	mock.ExpectQuery("SELECT (.+) FROM products WHERE id = \\? FOR UPDATE").
		WithArgs(1).
		WillReturnRows(productRows(80))
	mock.ExpectExec("UPDATE products SET current_stock = current_stock \\+ \\?").
		WithArgs(15, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO stock_entries").
		WithArgs(1, domain.EntryTypeIn, 15, nil, "Supply reversal for Sale #SALE-20250101-AAAAAA", "u1").
		WillReturnResult(sqlmock.NewResult(13, 1))
	mock.ExpectExec("UPDATE sales SET quantity_supplied = \\?, supply_status = \\?").
		WithArgs(5, domain.SupplyStatusPartiallySupplied, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sale, err := svc.UpdateSupply(context.Background(), UpdateSupplyInput{
		SaleID:           7,
		QuantitySupplied: 5,
		Actor:            testActor,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, sale.QuantitySupplied)
	assert.Equal(t, domain.SupplyStatusPartiallySupplied, sale.SupplyStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleService_UpdateSupply_SameQuantity_NoStockMutation(t *testing.T) {
	svc, mock, done := newSaleService(t)
	defer done()

	existing := domain.Sale{
		ID: 7, SaleNumber: "SALE-20250101-AAAAAA", ProductID: 1, CustomerID: 2,
		QuantityOrdered: 50, QuantitySupplied: 20,
		SupplyStatus: domain.SupplyStatusPartiallySupplied,
		UnitPrice:    decimal.RequireFromString("150"),
		TotalAmount:  decimal.RequireFromString("7500"),
		RecordedBy:   "u1",
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM sales WHERE id = \\? FOR UPDATE").
		WithArgs(7).
		WillReturnRows(saleRows(existing))
	mock.ExpectExec("UPDATE sales SET quantity_supplied = \\?, supply_status = \\?").
		WithArgs(20, domain.SupplyStatusPartiallySupplied, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sale, err := svc.UpdateSupply(context.Background(), UpdateSupplyInput{
		SaleID:           7,
		QuantitySupplied: 20,
		Actor:            testActor,
	})

	require.NoError(t, err)
	assert.Equal(t, 20, sale.QuantitySupplied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleService_UpdateSupply_OverOrdered_Rejected(t *testing.T) {
	svc, mock, done := newSaleService(t)
	defer done()

	existing := domain.Sale{
		ID: 7, SaleNumber: "SALE-20250101-AAAAAA", ProductID: 1, CustomerID: 2,
		QuantityOrdered: 50, QuantitySupplied: 20,
		SupplyStatus: domain.SupplyStatusPartiallySupplied,
		UnitPrice:    decimal.RequireFromString("150"),
		TotalAmount:  decimal.RequireFromString("7500"),
		RecordedBy:   "u1",
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM sales WHERE id = \\? FOR UPDATE").
		WithArgs(7).
		WillReturnRows(saleRows(existing))
	mock.ExpectRollback()

	sale, err := svc.UpdateSupply(context.Background(), UpdateSupplyInput{
		SaleID:           7,
		QuantitySupplied: 60,
		Actor:            testActor,
	})

	assert.Nil(t, sale)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleService_UpdateSupply_StatusMismatch_Rejected(t *testing.T) {
	svc, mock, done := newSaleService(t)
	defer done()

	existing := domain.Sale{
		ID: 7, SaleNumber: "SALE-20250101-AAAAAA", ProductID: 1, CustomerID: 2,
		QuantityOrdered: 50, QuantitySupplied: 20,
		SupplyStatus: domain.SupplyStatusPartiallySupplied,
		UnitPrice:    decimal.RequireFromString("150"),
		TotalAmount:  decimal.RequireFromString("7500"),
		RecordedBy:   "u1",
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM sales WHERE id = \\? FOR UPDATE").
		WithArgs(7).
		WillReturnRows(saleRows(existing))
	mock.ExpectRollback()

	supplied := domain.SupplyStatusSupplied

	sale, err := svc.UpdateSupply(context.Background(), UpdateSupplyInput{
		SaleID:           7,
		QuantitySupplied: 30,
		ExpectedStatus:   &supplied,
		Actor:            testActor,
	})

	assert.Nil(t, sale)
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "supplyStatus", ve.Details[0].Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}
