package party

import (
	"database/sql"

	"go.uber.org/zap"

	"stockledger/internal/party/controller"
	partyrepo "stockledger/internal/party/repository"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.PartyController {
	return controller.NewPartyController(
		partyrepo.NewMySQLSupplierRepository(db),
		partyrepo.NewMySQLCustomerRepository(db),
		logger,
	)
}
