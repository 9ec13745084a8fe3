package invoice

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"stockledger/internal/audit"
	"stockledger/internal/config"
	"stockledger/internal/ident"
	"stockledger/internal/invoice/controller"
	invoicerepo "stockledger/internal/invoice/repository"
	"stockledger/internal/invoice/service"
	"stockledger/internal/invoice/usecase"
	partyrepo "stockledger/internal/party/repository"
)

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	logger *zap.Logger,
	numbers ident.NumberGenerator,
	recorder *audit.Recorder,
) *controller.InvoiceController {
	invoiceRepo := invoicerepo.NewMySQLInvoiceRepository(db)
	itemRepo := invoicerepo.NewMySQLInvoiceItemRepository(db)
	paymentRepo := invoicerepo.NewMySQLPaymentRepository(db)
	customerRepo := partyrepo.NewMySQLCustomerRepository(db)

	invoiceSvc := service.NewInvoiceService(
		db,
		invoiceRepo,
		itemRepo,
		paymentRepo,
		numbers,
		time.Now,
		logger,
		cfg.Engine.TxTimeout,
	)

	invoiceUseCase := usecase.NewInvoiceUseCase(
		invoiceSvc,
		invoiceRepo,
		itemRepo,
		paymentRepo,
		customerRepo,
		recorder,
		logger,
		cfg.Engine.MaxRetryAttempts,
	)

	return controller.NewInvoiceController(invoiceUseCase, logger)
}
