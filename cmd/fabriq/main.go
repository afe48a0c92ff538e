package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fabriq-erp/fabriq/internal/app"
	"github.com/fabriq-erp/fabriq/internal/bom"
	"github.com/fabriq-erp/fabriq/internal/catalog/customers"
	"github.com/fabriq-erp/fabriq/internal/catalog/labor"
	"github.com/fabriq-erp/fabriq/internal/catalog/processes"
	"github.com/fabriq-erp/fabriq/internal/catalog/products"
	"github.com/fabriq-erp/fabriq/internal/observability"
	"github.com/fabriq-erp/fabriq/internal/platform/cache"
	"github.com/fabriq-erp/fabriq/internal/platform/db"
	"github.com/fabriq-erp/fabriq/internal/quotes"
	"github.com/fabriq-erp/fabriq/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	costRepo := bom.NewRepository(pool)
	costCache := bom.NewCache(redisClient, cfg.CostCacheTTL)
	costService := bom.NewService(costRepo, costCache, logger)
	costHandler := bom.NewHandler(logger, costService, metrics)

	recostEnqueuer := jobs.NewEnqueuer(asynqClient)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, costService, recostEnqueuer, logger)
	productsHandler := products.NewHandler(logger, productsService)

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo)
	customersHandler := customers.NewHandler(logger, customersService)

	processesRepo := processes.NewPgRepository(pool)
	processesService := processes.NewService(processesRepo, logger)
	processesHandler := processes.NewHandler(logger, processesService)

	laborRepo := labor.NewPgRepository(pool)
	laborService := labor.NewService(laborRepo, logger)
	laborHandler := labor.NewHandler(logger, laborService)

	ordersRepo := quotes.NewRepository(pool)
	ordersService := quotes.NewService(ordersRepo, costService, logger)
	ordersHandler := quotes.NewHandler(logger, ordersService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Metrics:          metrics,
		CustomersHandler: customersHandler,
		ProductsHandler:  productsHandler,
		ProcessesHandler: processesHandler,
		LaborHandler:     laborHandler,
		CostHandler:      costHandler,
		OrdersHandler:    ordersHandler,
		JobsHandler:      jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
