package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"docuai/internal/ai"
	"docuai/internal/api"
	"docuai/internal/api/handlers"
	"docuai/internal/queue"
	"docuai/internal/render"
	"docuai/internal/repository"
	"docuai/internal/service"
	"docuai/internal/storage"
	"docuai/pkg/auth"
	"docuai/pkg/config"
	"docuai/pkg/logger"
	"docuai/pkg/postgres"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// @title DocuAI API
// @version 1.0
// @description AI document generation: templates, design presets, subscription quotas and generated files

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting DocuAI service",
		zap.String("auth_strategy", cfg.Auth.Strategy),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, logger.Component("users"))
	templateRepo := repository.NewTemplateRepository(db, logger.Component("templates"))
	designRepo := repository.NewDesignTemplateRepository(db, logger.Component("designs"))
	brandRepo := repository.NewBrandSettingsRepository(db, logger.Component("branding"))
	docRepo := repository.NewDocumentRepository(db, logger.Component("documents"))
	usageRepo := repository.NewUsageRepository(db, logger.Component("usage"))

	files, err := storage.New(ctx, &cfg.Storage, logger.Component("storage"))
	if err != nil {
		appLogger.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	jobs, err := queue.New(&cfg.Queue, logger.Component("queue"))
	if err != nil {
		appLogger.Fatal("Failed to initialize generation queue", zap.Error(err))
	}
	defer jobs.Close()

	// Initialize JWT manager and the token strategy
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)
	strategy, err := auth.NewStrategy(&cfg.Auth, jwtManager)
	if err != nil {
		appLogger.Fatal("Failed to initialize auth strategy", zap.Error(err))
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, logger.Component("auth"))
	subscriptions := service.NewSubscriptionService(docRepo)
	admission := service.NewAdmission(templateRepo, subscriptions)
	docService := service.NewDocumentService(docRepo, admission, jobs, files, logger.Component("documents"))
	catalog := service.NewCatalogService(templateRepo, designRepo)
	adminService := service.NewAdminService(templateRepo, designRepo, brandRepo, userRepo, docRepo, usageRepo, logger.Component("admin"))

	// Initialize handlers
	h := api.Handlers{
		Auth:      handlers.NewAuthHandler(authService, appLogger),
		Documents: handlers.NewDocumentHandler(docService, appLogger),
		Catalog:   handlers.NewCatalogHandler(catalog, subscriptions, appLogger),
		Admin:     handlers.NewAdminHandler(adminService, appLogger),
	}

	// Setup router
	app := api.SetupRouter(h, strategy, authService, api.Options{
		CORSOrigins:  cfg.Server.CORSOrigins,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Health:       db.Ping,
	}, appLogger)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Generation.WorkerEnabled {
		provider, err := ai.NewProvider(ctx, &cfg.AI, logger.Component("ai"))
		if err != nil {
			appLogger.Fatal("Failed to initialize AI provider", zap.Error(err))
		}
		defer provider.Close()

		worker := service.NewWorker(
			docRepo,
			templateRepo,
			service.NewDesignResolver(designRepo, brandRepo),
			provider,
			render.DefaultRegistry(),
			files,
			usageRepo,
			service.WorkerOptions{
				MaxTokens: cfg.AI.MaxTokens,
				Timeout:   cfg.Generation.JobTimeout,
			},
			logger.Component("worker"),
		)
		dispatcher := service.NewDispatcher(jobs, worker, docRepo, service.DispatcherOptions{
			Concurrency:   cfg.Generation.Concurrency,
			PollTimeout:   cfg.Queue.PollTimeout,
			StuckAfter:    cfg.Generation.StuckAfter,
			SweepInterval: cfg.Generation.SweepInterval,
		}, logger.Component("dispatcher"))

		g.Go(func() error {
			return dispatcher.Run(gctx)
		})
	} else {
		appLogger.Info("Generation worker disabled; documents are queued for another process")
	}

	// Start server
	g.Go(func() error {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		return app.Listen(addr)
	})

	// Wait for interrupt signal or a failed component
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server")
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		appLogger.Error("Service stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	appLogger.Info("Service stopped")
}
