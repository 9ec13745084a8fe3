package sale

import (
	"database/sql"

	"go.uber.org/zap"

	"stockledger/internal/audit"
	catalogrepo "stockledger/internal/catalog/repository"
	"stockledger/internal/config"
	"stockledger/internal/ident"
	partyrepo "stockledger/internal/party/repository"
	"stockledger/internal/sale/controller"
	salerepo "stockledger/internal/sale/repository"
	"stockledger/internal/sale/service"
	"stockledger/internal/sale/usecase"
	"stockledger/internal/supply"
)

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	logger *zap.Logger,
	engine *supply.Engine,
	numbers ident.NumberGenerator,
	recorder *audit.Recorder,
) *controller.SaleController {
	saleRepo := salerepo.NewMySQLSaleRepository(db)
	productRepo := catalogrepo.NewMySQLProductRepository(db)
	customerRepo := partyrepo.NewMySQLCustomerRepository(db)

	saleSvc := service.NewSaleService(
		db,
		saleRepo,
		engine,
		numbers,
		logger,
		cfg.Engine.TxTimeout,
	)

	saleUseCase := usecase.NewSaleUseCase(
		saleSvc,
		saleRepo,
		productRepo,
		customerRepo,
		recorder,
		logger,
		cfg.Engine.MaxRetryAttempts,
	)

	return controller.NewSaleController(saleUseCase, logger)
}
