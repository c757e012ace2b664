package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/gemdesk/gemdesk/internal/app"
	"github.com/gemdesk/gemdesk/internal/auth"
	"github.com/gemdesk/gemdesk/internal/catalog"
	"github.com/gemdesk/gemdesk/internal/documents"
	"github.com/gemdesk/gemdesk/internal/inventory"
	"github.com/gemdesk/gemdesk/internal/orders"
	"github.com/gemdesk/gemdesk/internal/partners"
	"github.com/gemdesk/gemdesk/internal/partners/onboarding"
	"github.com/gemdesk/gemdesk/internal/platform/backend"
	"github.com/gemdesk/gemdesk/internal/platform/cache"
	"github.com/gemdesk/gemdesk/internal/platform/db"
	"github.com/gemdesk/gemdesk/internal/products"
	"github.com/gemdesk/gemdesk/internal/shared"
	"github.com/gemdesk/gemdesk/jobs"
	"github.com/gemdesk/gemdesk/report"
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

	dbpool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "gemdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	validate := validator.New()

	// One client per token strategy: session-scoped for operator traffic,
	// the static service token for token minting itself.
	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, shared.SessionTokenSource{Fallback: cfg.BackendToken})
	serviceClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, backend.StaticToken(cfg.BackendToken))

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, auth.NewBackendTokenIssuer(serviceClient))
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, validate)

	catalogModule := catalog.NewModule(logger, backendClient, validate)

	productsService := products.NewService(backendClient, validate)
	productsHandler := products.NewHandler(logger, productsService)

	queue := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	lookuper := onboarding.NewLookuper(backendClient, redisClient, cfg.LookupCacheTTL)
	pendingStore := onboarding.NewStore(dbpool)
	workflow := onboarding.NewWorkflow(logger, backendClient, lookuper, pendingStore, queue, validate)
	onboardingHandler := onboarding.NewHandler(logger, workflow)

	partnersService := partners.NewService(backendClient)
	partnersHandler := partners.NewHandler(logger, partnersService, onboardingHandler)

	inventoryService := inventory.NewService(backendClient, validate)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	ordersService := orders.NewService(backendClient)
	ordersHandler := orders.NewHandler(logger, ordersService)

	renderer, err := documents.NewRenderer()
	if err != nil {
		logger.Error("parse act templates", slog.Any("error", err))
		os.Exit(1)
	}
	pdfClient := report.NewClient(cfg.GotenbergURL)
	documentsService := documents.NewService(logger, partnersService, productsService, catalogModule.Categories.Service(), renderer, pdfClient, validate)
	documentsHandler := documents.NewHandler(logger, documentsService)

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
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		CatalogModule:    catalogModule,
		ProductsHandler:  productsHandler,
		PartnersHandler:  partnersHandler,
		InventoryHandler: inventoryHandler,
		OrdersHandler:    ordersHandler,
		DocumentsHandler: documentsHandler,
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
