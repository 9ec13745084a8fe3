package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogrepo "stockledger/internal/catalog/repository"
	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/ident"
	lporepo "stockledger/internal/lpo/repository"
	"stockledger/internal/supply"
	supplyrepo "stockledger/internal/supply/repository"
	"stockledger/internal/testutil"
)

func setupIntegration(t *testing.T) (*LPOService, *catalogrepo.MySQLProductRepository, int, int) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	testutil.SetupTestTables(t, db)

	productID, supplierID, _ := testutil.SeedBasicCatalog(t, db, 100)

	productRepo := catalogrepo.NewMySQLProductRepository(db)
	engine := supply.NewEngine(productRepo, supplyrepo.NewMySQLStockEntryRepository(db), zap.NewNop())

	svc := NewLPOService(
		db,
		lporepo.NewMySQLLPORepository(db),
		engine,
		ident.New(),
		time.Now,
		zap.NewNop(),
		5*time.Second,
	)

	return svc, productRepo, productID, supplierID
}

func TestIntegration_LPODeliveries_AccumulateToCompletion(t *testing.T) {
	svc, productRepo, productID, supplierID := setupIntegration(t)
	actor := domain.Actor{UserID: "u1", Staff: true}

	lpo, err := svc.Create(context.Background(), CreateLPOInput{
		SupplierID:      supplierID,
		ProductID:       productID,
		OrderedQuantity: 50,
		Actor:           actor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LPOStatusPending, lpo.Status)

	first, err := svc.RecordDelivery(context.Background(), RecordDeliveryInput{
		LPOID: lpo.ID, DeliveredQuantity: 30, Actor: actor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LPOStatusPartial, first.Status)
	assert.Nil(t, first.ActualDelivery)

	second, err := svc.RecordDelivery(context.Background(), RecordDeliveryInput{
		LPOID: lpo.ID, DeliveredQuantity: 20, Actor: actor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LPOStatusCompleted, second.Status)
	assert.NotNil(t, second.ActualDelivery)

	product, err := productRepo.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 150, product.CurrentStock)

	_, err = svc.RecordDelivery(context.Background(), RecordDeliveryInput{
		LPOID: lpo.ID, DeliveredQuantity: 1, Actor: actor,
	})
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}
