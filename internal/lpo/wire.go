package lpo

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"stockledger/internal/audit"
	catalogrepo "stockledger/internal/catalog/repository"
	"stockledger/internal/config"
	"stockledger/internal/ident"
	"stockledger/internal/lpo/controller"
	lporepo "stockledger/internal/lpo/repository"
	"stockledger/internal/lpo/service"
	"stockledger/internal/lpo/usecase"
	partyrepo "stockledger/internal/party/repository"
	"stockledger/internal/supply"
)

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	logger *zap.Logger,
	engine *supply.Engine,
	numbers ident.NumberGenerator,
	recorder *audit.Recorder,
) *controller.LPOController {
	lpoRepo := lporepo.NewMySQLLPORepository(db)
	supplierRepo := partyrepo.NewMySQLSupplierRepository(db)
	productRepo := catalogrepo.NewMySQLProductRepository(db)

	lpoSvc := service.NewLPOService(
		db,
		lpoRepo,
		engine,
		numbers,
		time.Now,
		logger,
		cfg.Engine.TxTimeout,
	)

	lpoUseCase := usecase.NewLPOUseCase(
		lpoSvc,
		lpoRepo,
		supplierRepo,
		productRepo,
		recorder,
		logger,
		cfg.Engine.MaxRetryAttempts,
	)

	return controller.NewLPOController(lpoUseCase, logger)
}
