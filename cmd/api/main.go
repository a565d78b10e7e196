package main

import (
	"context"
	"net/http"
	"os"

	"github.com/bloomhaus/bloomhaus-backend/api/routes"
	"github.com/bloomhaus/bloomhaus-backend/internal/admin"
	"github.com/bloomhaus/bloomhaus-backend/internal/auth"
	"github.com/bloomhaus/bloomhaus-backend/internal/fulfillment"
	"github.com/bloomhaus/bloomhaus-backend/internal/nurseries"
	"github.com/bloomhaus/bloomhaus-backend/internal/orders"
	"github.com/bloomhaus/bloomhaus-backend/internal/products"
	"github.com/bloomhaus/bloomhaus-backend/internal/users"
	"github.com/bloomhaus/bloomhaus-backend/pkg/auth/session"
	"github.com/bloomhaus/bloomhaus-backend/pkg/config"
	"github.com/bloomhaus/bloomhaus-backend/pkg/db"
	"github.com/bloomhaus/bloomhaus-backend/pkg/logger"
	"github.com/bloomhaus/bloomhaus-backend/pkg/migrate"
	"github.com/bloomhaus/bloomhaus-backend/pkg/redis"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	nurseryRepo := nurseries.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	fulfillmentRepo := fulfillment.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(productRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	nurseryService, err := nurseries.NewService(nurseryRepo, productRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create nursery service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo, productRepo, dbClient, cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	fulfillmentService, err := fulfillment.NewService(fulfillment.ServiceParams{
		Repo:          fulfillmentRepo,
		OrdersRepo:    orderRepo,
		NurseriesRepo: nurseryRepo,
		ProductsRepo:  productRepo,
		Tx:            dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(admin.ServiceParams{
		UserRepo:       userRepo,
		OrderRepo:      orderRepo,
		ProductRepo:    productRepo,
		NurseryRepo:    nurseryRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Sessions:     sessionManager,
			Auth:         authService,
			Products:     productService,
			Nurseries:    nurseryService,
			Orders:       orderService,
			Fulfillments: fulfillmentService,
			Admin:        adminService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
