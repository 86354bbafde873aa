// Command wri cleans a World Risk Index export: header names are trimmed,
// nine columns are selected and renamed, and incomplete rows are dropped.
//
// Usage:
//
//	go run ./cmd/wri -in data/worldriskindex.csv -out data/risk_processed.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/batch"
	"github.com/couchcryptid/disaster-risk-etl/internal/config"
	"github.com/couchcryptid/disaster-risk-etl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "wri:", err)
		os.Exit(1)
	}
}

func run() error {
	in := flag.String("in", "data/worldriskindex.csv", "World Risk Index CSV")
	out := flag.String("out", "data/risk_processed.csv", "cleaned CSV")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	logger := observability.NewCommandLogger()

	raw, err := csvfile.ReadFile(*in, csvfile.WithTrimHeader())
	if err != nil {
		return err
	}

	cleaned, stats, err := batch.CleanWRI(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", *in, err)
	}
	if err := csvfile.WriteFile(*out, cleaned); err != nil {
		return err
	}
	logger.Info("cleaned wri",
		"in", *in, "out", *out,
		"read", stats.Read, "incomplete", stats.Incomplete, "written", stats.Written)
	return nil
}
