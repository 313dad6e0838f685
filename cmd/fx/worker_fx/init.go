package worker_fx

import (
	"context"
	"os"
	"strconv"
	"time"

	"go.uber.org/fx"

	"pointfetch/internal/repositories"
	"pointfetch/internal/services"
	"pointfetch/internal/worker"
)

var Module = fx.Provide(
	providePoller,
)

func providePoller(orders repositories.OrderRepository, orderService services.OrderService) *worker.Poller {
	return worker.NewPoller(
		orders,
		orderService,
		envDuration("FULFILL_POLL_INTERVAL", 5*time.Second),
		envInt("FULFILL_WORKERS", 4),
		envInt("FULFILL_SCAN_LIMIT", 100),
	)
}

// StartPoller runs the poller for the lifetime of the fx app.
func StartPoller(lc fx.Lifecycle, poller *worker.Poller) {
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go poller.Run(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
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
