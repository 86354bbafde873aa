package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/disaster-risk-etl/internal/adapter/kafka"
	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/livefeed"
	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/disaster-risk-etl/internal/batch"
	"github.com/couchcryptid/disaster-risk-etl/internal/config"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
	"github.com/couchcryptid/disaster-risk-etl/internal/observability"
	"github.com/couchcryptid/disaster-risk-etl/internal/pipeline"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// liveFeedBuffer is the per-subscriber backlog of the live incident feed.
const liveFeedBuffer = 256

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coords, err := batch.LoadCoordinateTable(cfg.CoordinatesFile)
	if err != nil {
		return fmt.Errorf("load coordinates: %w", err)
	}
	logger.Info("coordinate mapping loaded", "cities", coords.Len(), "file", cfg.CoordinatesFile)

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	defer closeWith(logger, "kafka reader", reader.Close)
	writer := kafkaadapter.NewWriter(cfg, runID, logger)
	defer closeWith(logger, "kafka writer", writer.Close)

	loaders := pipeline.FanOut{writer}
	var ready observability.Readiness
	var stats httpadapter.StatsProvider
	if cfg.SQLitePath != "" {
		store, err := sqlite.Open(ctx, cfg.SQLitePath, runID, metrics, logger)
		if err != nil {
			return err
		}
		defer closeWith(logger, "sqlite store", store.Close)
		loaders = append(loaders, store)
		ready = append(ready, store)
		stats = store
		logger.Info("sqlite sink enabled", "path", cfg.SQLitePath)
	}

	// The feed goes last so subscribers only see incidents the durable
	// sinks accepted.
	feed := livefeed.NewHub(liveFeedBuffer, metrics, logger)
	loaders = append(loaders, feed)

	scorer := domain.Scorer{Weights: domain.IncidentWeights, Thresholds: cfg.Thresholds}
	transformer := pipeline.NewTransformer(scorer, coords, geocoder, logger)
	p := pipeline.New(reader, transformer, loaders, logger, metrics, cfg.BatchSize)
	ready = append(ready, p)

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, stats, logger)
	srv.Handle("GET /ws/incidents", feed)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := p.Run(gctx); err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		feed.Close()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}

func closeWith(logger *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error(name+" close error", "error", err)
	}
}
