package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pathway-engine/internal/config"
	"pathway-engine/internal/di"
	"pathway-engine/internal/observability"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.InitializeContainer(*configPath)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	logger := container.Logger
	cfg := container.Config

	// Distributed tracing is opt-in: without an endpoint the engine's spans
	// fall through to the global no-op provider.
	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracing(cfg.Tracing.ServiceName, cfg.Environment, cfg.Tracing.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("Tracer shutdown error", zap.Error(err))
			}
		}()
	}

	// Background decay: weakens and prunes pathways unused beyond the
	// staleness window.
	go container.Engine.RunDecayLoop(ctx, cfg.Engine.DecayInterval)

	// Hot-reload of learning parameters when the config file changes.
	if watcher, err := config.NewWatcher(*configPath, cfg, logger); err == nil {
		watcher.OnChange(func(updated *config.Config) {
			container.Engine.SetLearningParameters(
				updated.Engine.StrengthenDelta,
				updated.Engine.DecayRate,
				updated.Engine.StalenessWindow,
			)
		})
		watcher.Start()
		defer watcher.Stop()
	} else {
		logger.Warn("config watcher disabled", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      container.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", srv.Addr),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	container.Engine.Close()

	if err := logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}
	log.Println("Server stopped")
}
