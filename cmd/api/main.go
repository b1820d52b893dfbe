package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/academy-auth/internal/api/http"
	"github.com/spec-kit/academy-auth/internal/api/http/handlers"
	"github.com/spec-kit/academy-auth/internal/auth"
	"github.com/spec-kit/academy-auth/internal/config"
	"github.com/spec-kit/academy-auth/internal/events"
	"github.com/spec-kit/academy-auth/internal/observability"
	"github.com/spec-kit/academy-auth/internal/persistence"
	"github.com/spec-kit/academy-auth/internal/repository"
	"github.com/spec-kit/academy-auth/internal/service"
	"github.com/spec-kit/academy-auth/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var (
		redis    *persistence.Redis
		registry auth.RevocationRegistry
	)
	switch cfg.Auth.RevocationBackend {
	case config.RevocationBackendRedis:
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		registry = auth.NewRedisRegistry(redis.Client, "")
	default:
		registry = auth.NewMemoryRegistry()
	}
	logger.Info("revocation registry selected", zap.String("backend", cfg.Auth.RevocationBackend))

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService, err := service.NewAuthService(*cfg, service.AuthDependencies{
		SubjectRepo: repository.NewSubjectRepository(pg.PoolHandle()),
		Registry:    registry,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}

	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))
	sweeperDone := worker.StartRevocationSweeper(ctx, registry, cfg.Auth.SweepInterval(), logger)

	authMiddleware := auth.NewAuthMiddleware(authService.Validator(), logger, metrics)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Admin:          handlers.NewAdminHandler(authService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	<-sweeperDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
