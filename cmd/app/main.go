package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"pointfetch/cmd/fx/db_fx"
	"pointfetch/cmd/fx/ledger_fx"
	"pointfetch/cmd/fx/order_fx"
	"pointfetch/cmd/fx/provider_fx"
	"pointfetch/cmd/fx/worker_fx"
	"pointfetch/internal/api/controllers"
	"pointfetch/pkg/middleware"
	"pointfetch/pkg/utils"
)

func main() {
	app := fx.New(
		db_fx.Module,
		provider_fx.Module,
		ledger_fx.Module,
		order_fx.Module,
		worker_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
		fx.Invoke(worker_fx.StartPoller),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Println("Starting HTTP server at :" + os.Getenv("PORT"))
				if err := engine.Run(":" + os.Getenv("PORT")); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	db *gorm.DB,
	orderController *controllers.OrderController,
	pointsController *controllers.PointsController) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, db, orderController, pointsController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	db *gorm.DB,
	orderController *controllers.OrderController,
	pointsController *controllers.PointsController) {

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			utils.RespondError(c, http.StatusServiceUnavailable, "database down")
			return
		}
		utils.RespondSuccess(c, nil, "ok")
	})

	ordersGroup := r.Group("/orders", middleware.JWTAuthMiddleware())
	ordersGroup.POST("", orderController.CreateOrder)
	ordersGroup.GET("", orderController.ListOrders)
	ordersGroup.GET("/:id", orderController.GetOrder)
	ordersGroup.POST("/:id/cancel", orderController.CancelOrder)

	pointsGroup := r.Group("/points", middleware.JWTAuthMiddleware())
	pointsGroup.GET("/balance", pointsController.GetBalance)
	pointsGroup.GET("/history", pointsController.GetHistory)
	pointsGroup.POST("/grant", middleware.RoleMiddleware("admin"), pointsController.GrantPoints)
}
