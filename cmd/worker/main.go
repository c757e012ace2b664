package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/gemdesk/gemdesk/internal/app"
	"github.com/gemdesk/gemdesk/internal/partners/onboarding"
	"github.com/gemdesk/gemdesk/internal/platform/backend"
	"github.com/gemdesk/gemdesk/internal/platform/cache"
	"github.com/gemdesk/gemdesk/internal/platform/db"
	"github.com/gemdesk/gemdesk/internal/shared"
	"github.com/gemdesk/gemdesk/jobs"
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

	pool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	// The worker retries with the service token; there is no operator
	// session behind a queued registration.
	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, shared.SessionTokenSource{Fallback: cfg.BackendToken})
	lookuper := onboarding.NewLookuper(backendClient, redisClient, cfg.LookupCacheTTL)
	pendingStore := onboarding.NewStore(pool)
	workflow := onboarding.NewWorkflow(logger, backendClient, lookuper, pendingStore, nil, validator.New())
	retryHandler := onboarding.NewRetryHandler(logger, workflow)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: onboarding.TaskTypeRetryRegister, Handler: jobs.NewRetryRegisterHandler(retryHandler)},
			{Type: jobs.TaskTypeCleanupPending, Handler: jobs.NewCleanupPendingHandler(logger, pendingStore, 0)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: jobs.NewCleanupPendingTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
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
