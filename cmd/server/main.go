package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/datapilot/datapilot/pkg/ai"
	"github.com/datapilot/datapilot/pkg/config"
	"github.com/datapilot/datapilot/pkg/snowflake"
	"github.com/datapilot/datapilot/server/handlers"
	mcpserver "github.com/datapilot/datapilot/server/mcp"
	"github.com/datapilot/datapilot/server/mcp/metrics"
)

// Set by LDFLAGS
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local development reads credentials from a .env file; a missing file
	// is fine.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := newLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("server: received signal", "signal", sig.String())
		cancel()
	}()

	client, err := snowflake.NewClient(snowflake.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Role:      cfg.Role,
	},
		snowflake.WithLogger(log),
		snowflake.WithMaxConcurrency(cfg.MaxConcurrency),
	)
	if err != nil {
		return fmt.Errorf("create snowflake client: %w", err)
	}
	defer func() {
		if err := client.Disconnect(); err != nil {
			log.Error("failed to disconnect from snowflake", "error", err)
		}
	}()

	assistant, err := ai.NewAssistant(cfg.AnthropicAPIKey,
		ai.WithModel(cfg.Model),
		ai.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("create assistant: %w", err)
	}

	metricsErrCh := make(chan error, 1)
	if cfg.MetricsAddr != "" {
		metrics.BuildInfo.WithLabelValues(version).Set(1)
		go func() {
			listener, err := net.Listen("tcp", cfg.MetricsAddr)
			if err != nil {
				metricsErrCh <- fmt.Errorf("metrics listener: %w", err)
				return
			}
			log.Info("prometheus metrics server listening", "address", listener.Addr().String())
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.Serve(listener, mux); err != nil {
				metricsErrCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	var allowedTokens []string
	if cfg.APIKey != "" {
		allowedTokens = []string{cfg.APIKey}
	} else {
		log.Warn("API key not set, running with open access")
	}

	mcpSrv, err := mcpserver.New(ctx, mcpserver.Config{
		Logger:        log,
		Querier:       client,
		Assistant:     assistant,
		Version:       version,
		ListenAddr:    cfg.MCPAddr,
		AllowedTokens: allowedTokens,
	})
	if err != nil {
		return fmt.Errorf("create mcp server: %w", err)
	}

	restSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.NewHandler(client, assistant, log, version, cfg.Warehouse).Router(cfg.APIKey),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		if err := mcpSrv.Run(ctx); err != nil {
			errCh <- fmt.Errorf("mcp server: %w", err)
		}
	}()
	go func() {
		log.Info("rest server listening", "address", cfg.Addr)
		if err := restSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("rest server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("server: shutting down", "reason", ctx.Err())
	case err = <-errCh:
		log.Error("server: error causing shutdown", "error", err)
		cancel()
	case err = <-metricsErrCh:
		log.Error("server: metrics error causing shutdown", "error", err)
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if shutdownErr := restSrv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("failed to shutdown rest server", "error", shutdownErr)
	}
	return err
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: lvl}))
}
