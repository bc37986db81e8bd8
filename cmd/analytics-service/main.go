package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/smartticket/platform/internal/api/http"
	"github.com/smartticket/platform/internal/api/http/handlers"
	"github.com/smartticket/platform/internal/bus"
	"github.com/smartticket/platform/internal/config"
	"github.com/smartticket/platform/internal/observability"
	"github.com/smartticket/platform/internal/persistence"
	"github.com/smartticket/platform/internal/repository"
	"github.com/smartticket/platform/internal/service"
	"github.com/smartticket/platform/internal/worker"
)

const serviceName = "analytics-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, serviceName)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metricsSrv := observability.InitMetrics(serviceName, cfg.Metrics.Addr, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.EnsureAnalyticsSchema(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to bootstrap schema", zap.Error(err))
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	b, err := bus.Dial(ctx, serviceName, cfg.Bus, logger)
	if err != nil {
		logger.Fatal("failed to connect message bus", zap.Error(err))
	}
	defer b.Close()

	if err := b.DeclareTopology(ctx, worker.AnalyticsTopology(cfg.Bus.Exchange)); err != nil {
		logger.Fatal("failed to declare bus topology", zap.Error(err))
	}

	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		AnalyticsRepo: repository.NewAnalyticsRepository(pg.PoolHandle()),
		Dedup:         persistence.NewDedupStore(redis, cfg.Analytics.DedupTTL(), logger),
		Logger:        logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, serviceName, cfg.App.RequestTimeout())
	httptransport.RegisterAnalyticsRoutes(app, httptransport.AnalyticsRoutes{
		Health:    handlers.NewHealthHandler(serviceName),
		Analytics: handlers.NewAnalyticsHandler(analyticsService),
	})

	worker.Run(ctx, b, serviceName, worker.AnalyticsConsumers(analyticsService), logger)

	go func() {
		if err := app.Listen(cfg.App.Addr(cfg.Services.AnalyticsPort)); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
	if metricsSrv != nil {
		_ = metricsSrv.Close()
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
