package catalog

import (
	"database/sql"

	"go.uber.org/zap"

	"stockledger/internal/audit"
	"stockledger/internal/catalog/controller"
	catalogrepo "stockledger/internal/catalog/repository"
	"stockledger/internal/catalog/usecase"
	"stockledger/internal/config"
	"stockledger/internal/supply"
	supplyrepo "stockledger/internal/supply/repository"
)

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	logger *zap.Logger,
	engine *supply.Engine,
	recorder *audit.Recorder,
) *controller.CatalogController {
	productRepo := catalogrepo.NewMySQLProductRepository(db)
	entryRepo := supplyrepo.NewMySQLStockEntryRepository(db)
	openingRepo := catalogrepo.NewMySQLOpeningStockRepository(db)

	adjuster := supply.NewService(db, engine, logger, cfg.Engine.TxTimeout)

	catalogUseCase := usecase.NewCatalogUseCase(
		productRepo,
		entryRepo,
		openingRepo,
		adjuster,
		recorder,
		logger,
	)

	return controller.NewCatalogController(catalogUseCase, logger)
}
