package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/csv-manager/internal/api/http"
	"github.com/spec-kit/csv-manager/internal/api/http/handlers"
	"github.com/spec-kit/csv-manager/internal/auth"
	"github.com/spec-kit/csv-manager/internal/config"
	"github.com/spec-kit/csv-manager/internal/events"
	"github.com/spec-kit/csv-manager/internal/observability"
	"github.com/spec-kit/csv-manager/internal/persistence"
	"github.com/spec-kit/csv-manager/internal/ratelimit"
	"github.com/spec-kit/csv-manager/internal/repository"
	"github.com/spec-kit/csv-manager/internal/service"
	"github.com/spec-kit/csv-manager/internal/storage"
	"github.com/spec-kit/csv-manager/internal/worker"
	"github.com/spec-kit/csv-manager/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger, cfg.Postgres.MigrationsDir); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store, err := storage.NewStore(cfg.Upload.Directory)
	if err != nil {
		logger.Fatal("failed to init upload storage", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	fileRepo := repository.NewCSVFileRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	hub := ws.NewHub(logger)
	worker.NewBroadcastWorker(dispatcher, hub, logger).Start()

	limiter := ratelimit.NewLoginLimiter(redis.Client, logger, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow())

	authService := service.NewAuthService(cfg.Auth, userRepo, limiter, logger)
	userService := service.NewUserService(userRepo, fileRepo, store, logger, cfg.Auth.BcryptCost)
	csvService := service.NewCSVService(fileRepo, store, dispatcher, logger, cfg.Upload)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Upload.MaxFileSizeBytes()) + 1024*1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		RequestTimeout: cfg.App.RequestTimeout(),
		CORSOrigins:    cfg.CORS.Origins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		CSV:            handlers.NewCSVHandler(csvService),
		AuthMiddleware: authMiddleware,
		Hub:            hub,
		Logger:         logger,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
