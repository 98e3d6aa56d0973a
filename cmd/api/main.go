package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/user/linkcard/internal/app"
	"github.com/user/linkcard/internal/delivery/http/handler"
	"github.com/user/linkcard/internal/delivery/http/router"
	"github.com/user/linkcard/internal/delivery/http/server"
	"github.com/user/linkcard/internal/entity"
	"github.com/user/linkcard/pkg/config"
	"github.com/user/linkcard/pkg/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	// --- Logger ---
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer zl.Sync()

	// --- Dependencies ---
	ctx := context.Background()
	a, err := app.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialise application", zap.Error(err))
	}
	defer a.Close()

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(
		a.Resolver,
		a.Converter,
		a.Cards,
		handler.CardDefaults{Target: entity.Target(cfg.Target), ClassPrefix: cfg.ClassPrefix},
		a.HealthChecks,
		zl,
	)
	srv := server.New(cfg.ServerPort, router.New(apiHandler, a.Metrics, a.Registry, zl))

	// Graceful Shutdown
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("could not start server", zap.Error(err))
		}
	}()

	zl.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exiting")
}
