// Command validate checks produced CSV files: each file must survive a
// write-then-read round trip with the same columns and row count, and its
// rows must be internally consistent (month range, season, severity label).
// With -schema the column set must also match the named output schema.
//
// Usage:
//
//	go run ./cmd/validate -schema final data/final_dataset.csv
//	go run ./cmd/validate -schema emdat data/emdat_processed.csv
//	go run ./cmd/validate data/final_dataset.csv data/risk_forecast.csv
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/batch"
	"github.com/couchcryptid/disaster-risk-etl/internal/config"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
)

// maxFailuresShown caps the per-file failure listing.
const maxFailuresShown = 20

func main() {
	schema := flag.String("schema", "", "expected schema: "+strings.Join(batch.SchemaNames(), ", "))
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if code := run(*schema, flag.Args()); code != 0 {
		os.Exit(code)
	}
}

func run(schema string, paths []string) int {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "validate:", err)
		return 1
	}

	var expected []string
	if schema != "" {
		cols, ok := batch.Schemas[schema]
		if !ok {
			fmt.Fprintf(os.Stderr, "validate: unknown schema %q (want one of %s)\n",
				schema, strings.Join(batch.SchemaNames(), ", "))
			return 2
		}
		expected = cols
	}

	thresholds, err := config.ParseThresholds()
	if err != nil {
		fmt.Fprintln(os.Stderr, "validate:", err)
		return 1
	}

	failed := 0
	for _, path := range paths {
		if !validateFile(path, expected, thresholds) {
			failed++
		}
	}

	fmt.Printf("\n%d/%d files passed\n", len(paths)-failed, len(paths))
	if failed > 0 {
		return 1
	}
	return 0
}

func validateFile(path string, expected []string, thresholds domain.Thresholds) bool {
	table, err := csvfile.ReadFile(path)
	if err != nil {
		fmt.Printf("FAIL %s: %v\n", path, err)
		return false
	}

	report := batch.Validate(table, expected, thresholds, domain.EMDATThresholds)
	if report.OK() {
		fmt.Printf("PASS %s (%d rows)\n", path, report.Rows)
		return true
	}

	fmt.Printf("FAIL %s (%d rows, %d failures)\n", path, report.Rows, len(report.Failures))
	for i, f := range report.Failures {
		if i == maxFailuresShown {
			fmt.Printf("  ... %d more\n", len(report.Failures)-maxFailuresShown)
			break
		}
		fmt.Printf("  %s\n", f)
	}
	return false
}
