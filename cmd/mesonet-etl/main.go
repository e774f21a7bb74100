package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/mesonet-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/mesonet-etl/internal/adapter/kafka"
	"github.com/couchcryptid/mesonet-etl/internal/adapter/mesonet"
	"github.com/couchcryptid/mesonet-etl/internal/config"
	"github.com/couchcryptid/mesonet-etl/internal/domain"
	"github.com/couchcryptid/mesonet-etl/internal/observability"
	"github.com/couchcryptid/mesonet-etl/internal/pipeline"
	"github.com/couchcryptid/mesonet-etl/internal/retrieval"
	"github.com/couchcryptid/mesonet-etl/internal/stations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Station enrichment is enabled by STATIONS_FILE.
	var locator domain.StationLocator
	if cfg.StationsFile != "" {
		table, err := stations.Load(cfg.StationsFile)
		if err != nil {
			logger.Error("failed to load station table", "path", cfg.StationsFile, "error", err)
			os.Exit(1)
		}
		locator = table
		logger.Info("station enrichment enabled", "stations", table.Len())
		logger.Debug("station table loaded", "path", cfg.StationsFile, "ids", table.IDs())
	} else {
		logger.Info("station enrichment disabled")
	}

	client := mesonet.NewClient(cfg.MesonetTimeout, metrics, logger)
	fetcher := retrieval.NewFetcher(client, cfg.MesonetBaseURL, logger, metrics)
	transformer := pipeline.NewTransformer(cfg.MesonetFields, locator, logger, metrics)
	writer := kafkaadapter.NewWriter(cfg, logger)

	p := pipeline.New(fetcher, transformer, writer, logger, metrics, pipeline.Options{
		Station:  cfg.MesonetStation,
		Interval: cfg.PollInterval,
		Lag:      cfg.PollLag,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, fetcher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
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
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
