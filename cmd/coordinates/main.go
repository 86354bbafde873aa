// Command coordinates appends latitude and longitude columns to a dataset.
// Cities are resolved from a mapping file (or the built-in mapping), then
// through Mapbox when MAPBOX_TOKEN is set, and otherwise fall back to the
// centre of India.
//
// Usage:
//
//	go run ./cmd/coordinates -in data/final_dataset.csv -out data/mapped_dataset.csv
//	go run ./cmd/coordinates -in data/final_dataset.csv -mapping data/cities.csv -out data/mapped_dataset.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/disaster-risk-etl/internal/batch"
	"github.com/couchcryptid/disaster-risk-etl/internal/config"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
	"github.com/couchcryptid/disaster-risk-etl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "coordinates:", err)
		os.Exit(1)
	}
}

func run() error {
	in := flag.String("in", "data/final_dataset.csv", "dataset CSV with a city column")
	out := flag.String("out", "data/mapped_dataset.csv", "output CSV")
	mapping := flag.String("mapping", "", "city,latitude,longitude CSV (defaults to COORDINATES_FILE, then the built-in mapping)")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewCommandLogger()

	if *mapping == "" {
		*mapping = cfg.CoordinatesFile
	}
	table, err := batch.LoadCoordinateTable(*mapping)
	if err != nil {
		return err
	}

	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		metrics := observability.NewMetrics()
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		logger.Info("mapbox geocoding enabled for unmapped cities")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dataset, err := csvfile.ReadFile(*in)
	if err != nil {
		return err
	}
	mapped, stats, err := batch.AddCoordinates(ctx, dataset, table, geocoder, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", *in, err)
	}
	if err := csvfile.WriteFile(*out, mapped); err != nil {
		return err
	}
	logger.Info("mapped coordinates",
		"in", *in, "out", *out, "rows", mapped.Len(), "mapped_cities", table.Len(),
		"from_mapping", stats[domain.GeoSourceMapping],
		"from_mapbox", stats[domain.GeoSourceMapbox],
		"fallback", stats[domain.GeoSourceFallback])
	return nil
}
