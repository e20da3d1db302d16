package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/config"
	"github.com/spec-kit/complaint-portal/internal/observability"
	"github.com/spec-kit/complaint-portal/internal/stub"
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

	store, err := stub.NewStore(cfg.Stub.BcryptCost)
	if err != nil {
		logger.Fatal("failed to seed stub store", zap.Error(err))
	}

	tokens := stub.NewTokenManager(cfg.Stub.JWTSecret, cfg.Stub.AccessTokenTTLMinutes)
	metrics := observability.NewMetrics()

	app := fiber.New()
	stub.RegisterMiddlewares(app, logger, metrics, cfg.Stub.RequestTimeout())

	handlers := stub.NewHandlers(store, tokens, logger)
	stub.RegisterRoutes(app, stub.RouteConfig{
		Handlers: handlers,
		Auth:     stub.NewAuthMiddleware(tokens, store),
		CSRF:     stub.NewCSRFMiddleware(store),
	})

	go func() {
		if err := app.Listen(cfg.Stub.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	requests, errors := metrics.Snapshot()
	logger.Info("served", zap.Int("distinct_requests", len(requests)), zap.Int("distinct_errors", len(errors)))

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
