// Package app wires the id-builder worker's config, storage, services, and
// HTTP server together and runs the process until ctx is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/idbuilder/worker/internal/api"
	"github.com/idbuilder/worker/internal/authtoken"
	"github.com/idbuilder/worker/internal/config"
	"github.com/idbuilder/worker/internal/httpserver"
	"github.com/idbuilder/worker/internal/idservice"
	"github.com/idbuilder/worker/internal/storage"
	"github.com/idbuilder/worker/internal/telemetry"
)

// version is overridden at build time via -ldflags "-X ...version=...".
var version = "dev"

// Run is the process entry point: load config, wire dependencies, and serve
// until ctx is cancelled (typically by SIGINT/SIGTERM in main).
func Run(ctx context.Context, cfg *config.Config) error {
	logger := telemetry.NewLogger(cfg.Observability.LogFormat, cfg.Observability.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting idbuilder-worker",
		"listen", cfg.Server.ListenAddr(),
		"storage_backend", cfg.Storage.Backend,
	)

	st, err := storage.NewFileStorage(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	seqCfg := idservice.SequenceConfig{
		DefaultBatchSize:  cfg.Sequence.DefaultBatchSize,
		PrefetchThreshold: cfg.Sequence.PrefetchThreshold,
	}
	incrementSvc := idservice.NewIncrementService(st, seqCfg, logger)
	formattedSvc := idservice.NewFormattedService(st, seqCfg, logger)
	allocator := idservice.NewWorkerIDAllocator()
	snowflakeSvc := idservice.NewSnowflakeService(st, allocator)

	tokens := authtoken.NewService(authtoken.Config{
		AdminToken:         cfg.Auth.AdminToken,
		KeyTokenExpiration: cfg.Auth.KeyTokenExpiration,
	})
	if cfg.Auth.AdminToken == "admin_change_me_in_production" {
		logger.Warn("using the default admin token; set IDBUILDER_WORKER_AUTH__ADMIN_TOKEN before exposing this service")
	}

	metricsReg := telemetry.NewMetricsRegistry(append(telemetry.All(), httpserver.CoreMetrics()...)...)

	srv := httpserver.NewServer(httpserver.ServerConfig{
		CORSAllowedOrigins: []string{"*"},
	}, logger, metricsReg)

	a := &api.API{
		Increment:      incrementSvc,
		Snowflake:      snowflakeSvc,
		Formatted:      formattedSvc,
		Tokens:         tokens,
		Storage:        st,
		Version:        version,
		WorkerLeaseTTL: cfg.WorkerLease.DefaultTTL,
	}
	a.Mount(srv.Router)

	go runTokenCleanupLoop(ctx, tokens, logger)

	httpSrv := &http.Server{
		Addr:         cfg.Server.ListenAddr(),
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.ListenAddr())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// runTokenCleanupLoop periodically evicts expired key tokens from the
// in-memory token store so long-running processes don't accumulate them.
func runTokenCleanupLoop(ctx context.Context, tokens *authtoken.Service, logger *slog.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tokens.Cleanup()
			logger.Debug("expired key tokens swept")
		}
	}
}
