package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/ai"
	httptransport "github.com/smartticket/platform/internal/api/http"
	"github.com/smartticket/platform/internal/api/http/handlers"
	"github.com/smartticket/platform/internal/bus"
	"github.com/smartticket/platform/internal/config"
	"github.com/smartticket/platform/internal/observability"
	"github.com/smartticket/platform/internal/service"
	"github.com/smartticket/platform/internal/worker"
)

const serviceName = "ai-service"

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

	b, err := bus.Dial(ctx, serviceName, cfg.Bus, logger)
	if err != nil {
		logger.Fatal("failed to connect message bus", zap.Error(err))
	}
	defer b.Close()

	if err := b.DeclareTopology(ctx, worker.CategorizationTopology(cfg.Bus.Exchange)); err != nil {
		logger.Fatal("failed to declare bus topology", zap.Error(err))
	}

	aiClient, err := ai.NewClient(cfg.AI, logger)
	if err != nil {
		logger.Fatal("failed to init ai client", zap.Error(err))
	}
	// a nil *ai.Client must stay a nil Generator, not a typed nil
	var generator ai.Generator
	if aiClient != nil {
		generator = aiClient
	}
	engine := ai.NewEngine(generator, cfg.AI, logger)

	categorizationService := service.NewCategorizationService(service.CategorizationDependencies{
		Engine:    engine,
		Publisher: b,
		Logger:    logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, serviceName, cfg.App.RequestTimeout())
	httptransport.RegisterCategorizationRoutes(app, httptransport.CategorizationRoutes{
		Categorize: handlers.NewCategorizeHandler(categorizationService, serviceName),
	})

	worker.Run(ctx, b, serviceName, worker.CategorizationConsumers(categorizationService), logger)

	go func() {
		if err := app.Listen(cfg.App.Addr(cfg.Services.AIPort)); err != nil {
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
