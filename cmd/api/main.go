package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seds-backend/infrastructure/config"
	"seds-backend/infrastructure/di"
	"seds-backend/interfaces/http/rest"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	api := rest.NewRouter(rest.Dependencies{
		CommandBus:     container.CommandBus,
		QueryBus:       container.QueryBus,
		Confirmations:  container.Confirmations,
		Authenticator:  container.Authenticator,
		Collector:      container.Collector,
		AllowedOrigins: cfg.AllowedOrigins,
		Debug:          !cfg.IsProduction(),
		Logger:         container.Logger,
	}).Setup()

	// Prometheus scrapes outside the API's auth and middleware
	root := chi.NewRouter()
	if cfg.EnableMetrics {
		root.Handle("/metrics", container.Collector.Handler())
	}
	root.Mount("/", api)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("stage", cfg.Stage),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}

	log.Println("Server stopped")
}
