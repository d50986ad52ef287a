// Package main provides the entry point for the access-control service
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/gateward/go-core/internal/api"
	"github.com/gateward/go-core/internal/authz"
	"github.com/gateward/go-core/internal/cache"
	"github.com/gateward/go-core/internal/config"
	"github.com/gateward/go-core/internal/events"
	"github.com/gateward/go-core/internal/logging"
	"github.com/gateward/go-core/internal/metrics"
	"github.com/gateward/go-core/internal/policy"
	"github.com/gateward/go-core/internal/tokenx"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "/etc/gateward/config.yaml", "Path to the configuration file")
		addr        = flag.String("addr", "", "Listen address override")
		logLevel    = flag.String("log-level", "", "Log level override (debug, info, warn, error)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("gateward %s\n", Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting gateward",
		zap.String("version", Version),
		zap.String("commit", GitCommit),
	)

	perms, err := policy.NewLoader(logger).LoadFromFile(cfg.PolicyFile)
	if err != nil {
		logger.Fatal("Failed to load permission policy", zap.Error(err))
	}

	tokenCache, err := cache.NewRedisCache(&cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Failed to connect to token cache", zap.Error(err))
	}
	defer tokenCache.Close()

	m := metrics.NewPrometheusMetrics("gateward")

	tokens, err := tokenx.NewService(cfg.Token, tokenCache, logger, m)
	if err != nil {
		logger.Fatal("Failed to create token service", zap.Error(err))
	}

	registry := authz.NewDefaultRegistry(perms, logger, m)

	// Identity events: local notifier bridged across processes via Redis,
	// with the exchange-token invalidator subscribed
	notifier := events.NewNotifier()
	defer notifier.Close()
	tokenx.NewInvalidator(tokenCache, tokens.Keys(), logger).Register(notifier)

	bridge := events.NewRedisBridge(tokenCache.Client(), events.DefaultChannel, notifier, logger)
	bridge.Start()
	defer bridge.Close()

	server := api.New(api.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, registry, tokens, m, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Graceful shutdown incomplete", zap.Error(err))
	}
}
