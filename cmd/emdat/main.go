// Command emdat cleans an EM-DAT disaster export: the file is decoded as
// Latin-1, malformed lines are skipped, the expected columns are renamed
// (absent ones are filled), rows without a start year are dropped and each
// row gets a severity score and label.
//
// Usage:
//
//	go run ./cmd/emdat -in data/emdat.csv -out data/emdat_processed.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/batch"
	"github.com/couchcryptid/disaster-risk-etl/internal/config"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
	"github.com/couchcryptid/disaster-risk-etl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "emdat:", err)
		os.Exit(1)
	}
}

func run() error {
	in := flag.String("in", "data/emdat.csv", "EM-DAT export CSV (Latin-1)")
	out := flag.String("out", "data/emdat_processed.csv", "cleaned CSV")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	logger := observability.NewCommandLogger()

	raw, err := csvfile.ReadFile(*in, csvfile.WithLatin1(), csvfile.WithSkipBadLines())
	if err != nil {
		return err
	}

	cleaned, stats, err := batch.CleanEMDAT(raw, domain.DefaultEMDATWeights, domain.EMDATThresholds)
	if err != nil {
		return fmt.Errorf("%s: %w", *in, err)
	}
	if len(stats.MissingColumns) > 0 {
		logger.Warn("expected columns not found, filled with defaults", "columns", stats.MissingColumns)
	}

	if err := csvfile.WriteFile(*out, cleaned); err != nil {
		return err
	}
	logger.Info("cleaned emdat",
		"in", *in, "out", *out,
		"read", stats.Read, "skipped_lines", stats.Skipped,
		"dropped_year", stats.DroppedYear, "written", stats.Written)
	return nil
}
