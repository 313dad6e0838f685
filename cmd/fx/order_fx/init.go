package order_fx

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"pointfetch/internal/api/controllers"
	"pointfetch/internal/provider"
	"pointfetch/internal/repositories"
	"pointfetch/internal/services"
)

var Module = fx.Provide(
	provideOrderRepository,
	provideOrderService,
	provideOrderController,
)

func provideOrderRepository(db *gorm.DB) repositories.OrderRepository {
	return repositories.NewOrderRepository(db)
}

func provideOrderService(
	db *gorm.DB,
	orders repositories.OrderRepository,
	ledger repositories.LedgerRepository,
	client provider.Client,
) services.OrderService {
	cfg := services.FulfillmentConfig{
		PollTimeout:       envDuration("FULFILL_POLL_TIMEOUT", 15*time.Minute),
		MaxSubmitAttempts: envInt("FULFILL_MAX_SUBMIT_ATTEMPTS", 5),
	}
	return services.NewOrderService(db, orders, ledger, client, cfg)
}

func provideOrderController(orderService services.OrderService) *controllers.OrderController {
	return controllers.NewOrderController(orderService)
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
