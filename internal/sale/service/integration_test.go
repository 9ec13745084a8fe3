package service

import (
	"context"
	"sync"
	"testing"
	"time"

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
	"stockledger/internal/testutil"
)

func setupIntegration(t *testing.T, initialStock int) (*SaleService, *catalogrepo.MySQLProductRepository, *supplyrepo.MySQLStockEntryRepository, int, int) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	testutil.SetupTestTables(t, db)

	productID, _, customerID := testutil.SeedBasicCatalog(t, db, initialStock)

	productRepo := catalogrepo.NewMySQLProductRepository(db)
	entryRepo := supplyrepo.NewMySQLStockEntryRepository(db)
	engine := supply.NewEngine(productRepo, entryRepo, zap.NewNop())

	svc := NewSaleService(
		db,
		salerepo.NewMySQLSaleRepository(db),
		engine,
		ident.New(),
		zap.NewNop(),
		5*time.Second,
	)

	return svc, productRepo, entryRepo, productID, customerID
}

// ledgerBalance folds the signed ledger over the seeded baseline.
func ledgerBalance(t *testing.T, entryRepo *supplyrepo.MySQLStockEntryRepository, productID, initial int) int {
	t.Helper()

	entries, err := entryRepo.ListByProduct(context.Background(), productID)
	require.NoError(t, err)

	balance := initial
	for _, e := range entries {
		balance += e.SignedQuantity()
	}
	return balance
}

func TestIntegration_SaleWithSupply_MovesCounterAndLedgerTogether(t *testing.T) {
	svc, productRepo, entryRepo, productID, customerID := setupIntegration(t, 100)

	sale, err := svc.Create(context.Background(), CreateSaleInput{
		ProductID:        productID,
		CustomerID:       customerID,
		QuantityOrdered:  50,
		QuantitySupplied: 20,
		UnitPrice:        decimal.RequireFromString("150.00"),
		Actor:            domain.Actor{UserID: "u1", Staff: true},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SupplyStatusPartiallySupplied, sale.SupplyStatus)

	product, err := productRepo.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 80, product.CurrentStock)
	assert.Equal(t, product.CurrentStock, ledgerBalance(t, entryRepo, productID, 100))
}

func TestIntegration_SupplyRegression_RestocksThroughLedger(t *testing.T) {
	svc, productRepo, entryRepo, productID, customerID := setupIntegration(t, 100)

	sale, err := svc.Create(context.Background(), CreateSaleInput{
		ProductID:        productID,
		CustomerID:       customerID,
		QuantityOrdered:  50,
		QuantitySupplied: 20,
		UnitPrice:        decimal.RequireFromString("150.00"),
		Actor:            domain.Actor{UserID: "u1", Staff: true},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateSupply(context.Background(), UpdateSupplyInput{
		SaleID:           sale.ID,
		QuantitySupplied: 5,
		Actor:            domain.Actor{UserID: "u1", Staff: true},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SupplyStatusPartiallySupplied, updated.SupplyStatus)

	product, err := productRepo.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 95, product.CurrentStock)
	assert.Equal(t, product.CurrentStock, ledgerBalance(t, entryRepo, productID, 100))
}

func TestIntegration_ConcurrentOverdraft_OneSucceedsOneInsufficient(t *testing.T) {
	svc, productRepo, _, productID, customerID := setupIntegration(t, 30)

	actor := domain.Actor{UserID: "u1", Staff: true}
	results := make([]error, 2)
	var wg sync.WaitGroup

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), CreateSaleInput{
				ProductID:        productID,
				CustomerID:       customerID,
				QuantityOrdered:  20,
				QuantitySupplied: 20,
				UnitPrice:        decimal.RequireFromString("150.00"),
				Actor:            actor,
			})
			results[slot] = err
		}(i)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range results {
		if err == nil {
			succeeded++
		} else if _, ok := apperrors.IsInsufficientStockError(err); ok {
			insufficient++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)

	product, err := productRepo.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 10, product.CurrentStock)
}
