package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/smartticket/platform/internal/api/http"
	"github.com/smartticket/platform/internal/api/http/handlers"
	"github.com/smartticket/platform/internal/client"
	"github.com/smartticket/platform/internal/config"
	"github.com/smartticket/platform/internal/observability"
)

const serviceName = "api-gateway"

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

	gateway := handlers.NewGatewayHandler(
		cfg.Services,
		cfg.App.Version,
		client.NewForwarder(cfg.Services.Timeout(), logger),
		client.NewHealthProber(cfg.Services.HealthTimeout()),
	)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, serviceName, cfg.App.RequestTimeout())
	httptransport.RegisterGatewayRoutes(app, gateway)

	go func() {
		if err := app.Listen(cfg.App.Addr(cfg.Services.GatewayPort)); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

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
