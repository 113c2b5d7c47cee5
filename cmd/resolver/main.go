package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/swiss-seismological-service/hazard-threshold-etl/internal/adapter/http"
	kafkaadapter "github.com/swiss-seismological-service/hazard-threshold-etl/internal/adapter/kafka"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/adapter/openquake"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/config"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/domain"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/observability"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	profile, err := config.LoadAlarmProfile(cfg.AlarmProfilePath)
	if err != nil {
		logger.Error("failed to load alarm profile", "error", err, "path", cfg.AlarmProfilePath)
		os.Exit(1)
	}
	logger.Info("alarm profile loaded", "levels", len(profile.Levels))

	// Initialize engine fetcher (feature-flagged via ENGINE_ENABLED / ENGINE_BASE_URL).
	var fetcher domain.CurveFetcher
	if cfg.EngineEnabled {
		client := openquake.NewClient(cfg.EngineBaseURL, cfg.EngineTimeout, logger, metrics)
		fetcher = openquake.NewCachedFetcher(client, cfg.EngineCacheSize, metrics)
		metrics.FetcherEnabled.Set(1)
		logger.Info("engine fetching enabled",
			"base_url", cfg.EngineBaseURL,
			"cache_size", cfg.EngineCacheSize,
			"timeout", cfg.EngineTimeout,
		)
	} else {
		logger.Info("engine fetching disabled, reference messages will fail")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(profile, fetcher, cfg.ResolveFloor, cfg.ResolveParallelism, logger, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, profile, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start resolver pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
