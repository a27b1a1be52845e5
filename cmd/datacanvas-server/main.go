// Package main is the entry point for the DataCanvas console API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/datacanvas/datacanvas/internal/api"
	"github.com/datacanvas/datacanvas/internal/auth"
	"github.com/datacanvas/datacanvas/internal/config"
	"github.com/datacanvas/datacanvas/internal/metrics"
	"github.com/datacanvas/datacanvas/internal/storage"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(parseLogLevel(cfg.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("datacanvas console starting", "version", version, "listen_addr", cfg.ListenAddr)

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	//nolint:errcheck
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap := auth.NewBootstrapService(store, logger)
	if err := bootstrap.EnsureSession(ctx, cfg.BootstrapSessionToken); err != nil {
		return err
	}

	if err := metrics.Init(prometheus.DefaultRegisterer); err != nil {
		return err
	}
	metricsServer := &http.Server{
		Addr:    cfg.MetricsListenAddr,
		Handler: metrics.Handler(),
	}
	go func() {
		logger.Info("metrics server starting", "listen_addr", cfg.MetricsListenAddr)
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	handler := api.NewHandler(store, logLevel, logger)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	//nolint:errcheck
	metricsServer.Shutdown(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
