package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eshaffer321/firefly-merge-backend/internal/adapters/firefly"
	"github.com/eshaffer321/firefly-merge-backend/internal/api"
	"github.com/eshaffer321/firefly-merge-backend/internal/application/merge"
	"github.com/eshaffer321/firefly-merge-backend/internal/application/service"
	"github.com/eshaffer321/firefly-merge-backend/internal/domain/matcher"
	"github.com/eshaffer321/firefly-merge-backend/internal/infrastructure/config"
	"github.com/eshaffer321/firefly-merge-backend/internal/infrastructure/logging"
	"github.com/eshaffer321/firefly-merge-backend/internal/infrastructure/storage"
)

func main() {
	cfg := config.LoadOrEnv()

	logger := logging.NewLogger(cfg.Observability.Logging)

	repo, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to open merge history database", "error", err, "path", cfg.Storage.DatabasePath)
		os.Exit(1)
	}
	defer repo.Close()

	client := firefly.NewClient(firefly.Config{
		BaseURL:  cfg.Firefly.BaseURL,
		Token:    cfg.Firefly.Token,
		Timeout:  cfg.Firefly.Timeout(),
		RetryMax: cfg.Firefly.RetryMax,
	}, logging.NewLoggerWithSystem(cfg.Observability.Logging, "FIREFLY"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	about, err := client.Validate(ctx)
	cancel()
	if err != nil {
		logger.Error("failed to reach Firefly III", "error", err, "base_url", cfg.Firefly.BaseURL)
		os.Exit(1)
	}
	logger.Info("connected to Firefly III", "version", about.Version, "api_version", about.APIVersion)

	executor := merge.NewExecutor(client, cfg.Firefly.Timeout(), logging.NewLoggerWithSystem(cfg.Observability.Logging, "MERGE"))

	mergeService := service.NewMergeService(executor, repo, logging.NewLoggerWithSystem(cfg.Observability.Logging, "JOBS"), service.Config{
		RetentionPeriod:   cfg.Jobs.Retention(),
		CleanupInterval:   cfg.Jobs.CleanupInterval(),
		MaxConcurrentJobs: cfg.Jobs.MaxConcurrent,
	})
	mergeService.StartBackgroundCleanup()
	defer mergeService.StopBackgroundCleanup()

	server := api.NewServer(api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MatcherDefaults: matcher.Config{
			MaxBusinessDays: cfg.Matcher.MaxBusinessDays,
			MaxAlternatives: cfg.Matcher.MaxAlternatives,
		},
	}, client, mergeService, repo, logging.NewLoggerWithSystem(cfg.Observability.Logging, "API"))

	// Run the server in the background so we can catch signals here.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("received shutdown signal", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
