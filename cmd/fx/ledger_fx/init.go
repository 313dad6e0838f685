package ledger_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"pointfetch/internal/api/controllers"
	"pointfetch/internal/repositories"
	"pointfetch/internal/services"
)

var Module = fx.Provide(
	provideLedgerRepository,
	provideAccountRepository,
	provideLedgerService,
	providePointsController,
)

func provideLedgerRepository(db *gorm.DB) repositories.LedgerRepository {
	return repositories.NewLedgerRepository(db)
}

func provideAccountRepository(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideLedgerService(ledger repositories.LedgerRepository, accounts repositories.AccountRepository) services.LedgerService {
	return services.NewLedgerService(ledger, accounts)
}

func providePointsController(ledgerService services.LedgerService) *controllers.PointsController {
	return controllers.NewPointsController(ledgerService)
}
