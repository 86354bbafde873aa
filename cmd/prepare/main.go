// Command prepare builds the final dataset from a raw incidents CSV:
// duplicates and out-of-range rows are dropped, then season, risk score and
// severity are derived. With -sqlite the prepared incidents are also loaded
// into the analytics store served by the streaming service.
//
// Usage:
//
//	go run ./cmd/prepare -in data/incidents_full.csv -out data/final_dataset.csv
//	go run ./cmd/prepare -in data/incidents_full.csv -sqlite data/incidents.db
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/disaster-risk-etl/internal/batch"
	"github.com/couchcryptid/disaster-risk-etl/internal/config"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
	"github.com/couchcryptid/disaster-risk-etl/internal/observability"
	"github.com/google/uuid"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "prepare:", err)
		os.Exit(1)
	}
}

func run() error {
	in := flag.String("in", "data/incidents_full.csv", "raw incidents CSV")
	out := flag.String("out", "data/final_dataset.csv", "final dataset CSV")
	dbPath := flag.String("sqlite", "", "optional SQLite database to load the prepared incidents into")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	logger := observability.NewCommandLogger()

	thresholds, err := config.ParseThresholds()
	if err != nil {
		return err
	}
	scorer := domain.Scorer{Weights: domain.IncidentWeights, Thresholds: thresholds}

	raw, err := csvfile.ReadFile(*in)
	if err != nil {
		return err
	}

	final, incidents, stats, err := batch.Prepare(raw, scorer, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", *in, err)
	}
	if err := csvfile.WriteFile(*out, final); err != nil {
		return err
	}
	logger.Info("prepared dataset",
		"in", *in, "out", *out,
		"read", stats.Read, "duplicates", stats.Duplicates,
		"invalid", stats.Invalid, "written", stats.Written)

	if *dbPath == "" {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(ctx, *dbPath, uuid.NewString(), nil, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	for i := range incidents {
		incidents[i] = domain.EnrichIncident(incidents[i], scorer)
	}
	inserted, err := store.Insert(ctx, incidents)
	if err != nil {
		return err
	}
	logger.Info("loaded incidents into sqlite",
		"path", *dbPath, "rows", len(incidents),
		"inserted", inserted, "already_stored", len(incidents)-inserted)
	return nil
}
