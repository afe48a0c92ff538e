package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fabriq-erp/fabriq/internal/app"
	"github.com/fabriq-erp/fabriq/internal/bom"
	"github.com/fabriq-erp/fabriq/internal/platform/cache"
	"github.com/fabriq-erp/fabriq/internal/platform/db"
	"github.com/fabriq-erp/fabriq/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
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

	costRepo := bom.NewRepository(pool)
	costCache := bom.NewCache(redisClient, cfg.CostCacheTTL)
	costService := bom.NewService(costRepo, costCache, logger)

	recostHandlers := jobs.NewRecostHandlers(costService, logger)

	recostAllTask, err := jobs.NewRecostAllTask(time.Now().UTC())
	if err != nil {
		logger.Error("build recost-all task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeRecost, Handler: recostHandlers.HandleRecost},
			{Type: jobs.TaskTypeRecostAll, Handler: recostHandlers.HandleRecostAll},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 * * *", Task: recostAllTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
