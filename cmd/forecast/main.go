// Command forecast computes the naive rolling risk forecast: incidents are
// counted per state and month, and each count is averaged with up to the
// two preceding months of the same state. The counts come from a prepared
// dataset CSV, or from the SQLite store when -sqlite is given.
//
// Usage:
//
//	go run ./cmd/forecast -in data/final_dataset.csv -out data/risk_forecast.csv
//	go run ./cmd/forecast -sqlite data/incidents.db -out data/risk_forecast.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/disaster-risk-etl/internal/batch"
	"github.com/couchcryptid/disaster-risk-etl/internal/config"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
	"github.com/couchcryptid/disaster-risk-etl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "forecast:", err)
		os.Exit(1)
	}
}

func run() error {
	in := flag.String("in", "data/final_dataset.csv", "prepared dataset CSV")
	dbPath := flag.String("sqlite", "", "read incident counts from this SQLite database instead of -in")
	out := flag.String("out", "data/risk_forecast.csv", "forecast CSV")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	logger := observability.NewCommandLogger()

	var (
		records []domain.ForecastRecord
		source  string
	)
	if *dbPath != "" {
		store, err := sqlite.Open(context.Background(), *dbPath, "", nil, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		if records, err = store.Forecast(context.Background()); err != nil {
			return err
		}
		source = *dbPath
	} else {
		table, err := csvfile.ReadFile(*in)
		if err != nil {
			return err
		}
		if records, err = batch.Forecast(table, domain.ForecastWindow); err != nil {
			return fmt.Errorf("%s: %w", *in, err)
		}
		source = *in
	}

	if err := csvfile.WriteFile(*out, batch.ForecastTable(records)); err != nil {
		return err
	}
	logger.Info("wrote forecast", "source", source, "out", *out, "rows", len(records))
	return nil
}
