package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/crisis-service/internal/api/http"
	"github.com/spec-kit/crisis-service/internal/api/http/handlers"
	"github.com/spec-kit/crisis-service/internal/config"
	"github.com/spec-kit/crisis-service/internal/events"
	"github.com/spec-kit/crisis-service/internal/observability"
	"github.com/spec-kit/crisis-service/internal/persistence"
	"github.com/spec-kit/crisis-service/internal/repository"
	"github.com/spec-kit/crisis-service/internal/service"
	"github.com/spec-kit/crisis-service/internal/worker"
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

	crisisRepo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher(func(event events.Event, err error) {
		logger.Warn("event handler failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	})

	crisisService := service.NewCrisisService(service.CrisisDependencies{
		CrisisRepo: crisisRepo,
		Dispatcher: dispatcher,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher:   dispatcher,
		Logger:       logger,
		Config:       cfg.Notification,
		Redis:        redis.ClientHandle(),
		RedisChannel: cfg.Redis.EventsChannel,
	})
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	var redisPinger handlers.Pinger
	if redis != nil {
		redisPinger = redis
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Driver, crisisRepo, redisPinger),
		Crises:   handlers.NewCrisesHandler(crisisService, cfg.App.BasePath),
		Metrics:  handlers.NewMetricsHandler(metrics),
		BasePath: cfg.App.BasePath,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// openStore connects the configured record store and returns its repository
// together with a release func.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.CrisisRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return repository.NewPostgresCrisisRepository(pg.PoolHandle()), pg.Close, nil
	case config.StoreDriverSQLite:
		db, err := persistence.NewSQLite(ctx, cfg.SQLite, logger, &repository.CrisisRecord{})
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteCrisisRepository(db.Handle()), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
