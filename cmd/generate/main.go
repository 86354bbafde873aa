// Command generate writes a synthetic incident dataset, or the three-row
// sample dataset, as CSV. With -json it also writes the records in the raw
// wire format consumed from Kafka, for use as a producer fixture.
//
// Usage:
//
//	go run ./cmd/generate -n 800 -seed 42 -out data/incidents_full.csv
//	go run ./cmd/generate -sample -out data/incidents_small.csv
//	go run ./cmd/generate -n 50 -out data/incidents.csv -json data/mock/raw_incidents.json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/batch"
	"github.com/couchcryptid/disaster-risk-etl/internal/config"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
	"github.com/couchcryptid/disaster-risk-etl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "generate:", err)
		os.Exit(1)
	}
}

func run() error {
	n := flag.Int("n", 800, "number of synthetic incidents")
	seed := flag.Uint64("seed", 42, "random seed")
	sample := flag.Bool("sample", false, "write the three-row sample dataset instead")
	out := flag.String("out", "data/incidents_full.csv", "output CSV path")
	jsonOut := flag.String("json", "", "optional output path for a raw JSON fixture")
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

	var incidents []domain.Incident
	if *sample {
		incidents = domain.SampleIncidents(scorer)
	} else {
		if *n <= 0 {
			return errors.New("-n must be positive")
		}
		incidents = domain.NewGenerator(*seed, scorer).Generate(*n)
	}

	if err := csvfile.WriteFile(*out, batch.FullTable(incidents)); err != nil {
		return err
	}
	logger.Info("wrote incidents", "path", *out, "rows", len(incidents), "sample", *sample)

	if *jsonOut != "" {
		if err := writeRawJSON(*jsonOut, incidents); err != nil {
			return fmt.Errorf("writing raw fixture: %w", err)
		}
		logger.Info("wrote raw fixture", "path", *jsonOut)
	}

	sum := domain.Summarize(incidents)
	logger.Info("severity breakdown",
		"low", sum.BySeverity[string(domain.SeverityLow)],
		"medium", sum.BySeverity[string(domain.SeverityMedium)],
		"high", sum.BySeverity[string(domain.SeverityHigh)])
	return nil
}

func writeRawJSON(path string, incidents []domain.Incident) error {
	records := make([]domain.RawIncidentRecord, len(incidents))
	for i := range incidents {
		records[i] = incidents[i].Raw()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
