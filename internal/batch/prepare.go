package batch

import (
	"log/slog"
	"strings"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
)

// PrepareStats reports what Prepare did with its input rows.
type PrepareStats struct {
	Read       int
	Duplicates int
	Invalid    int
	Written    int
}

// Prepare builds the final dataset: exact duplicate rows are dropped, each
// remaining row is coerced and range-checked, and the survivors are scored.
// Rows that fail validation are dropped, not reported as errors. Any
// severity already present in the input is ignored and recomputed.
func Prepare(in *csvfile.Table, scorer domain.Scorer, logger *slog.Logger) (*csvfile.Table, []domain.Incident, PrepareStats, error) {
	stats := PrepareStats{Read: in.Len()}
	if err := in.Require(RawColumns...); err != nil {
		return nil, nil, stats, err
	}

	seen := make(map[string]struct{}, in.Len())
	incidents := make([]domain.Incident, 0, in.Len())
	for i, row := range in.Rows {
		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		inc, err := domain.ParseIncident(rawRecord(in, row))
		if err != nil {
			stats.Invalid++
			logger.Debug("dropping row", "line", i+2, "error", err)
			continue
		}
		incidents = append(incidents, scorer.Apply(inc))
	}

	stats.Written = len(incidents)
	return FinalTable(incidents), incidents, stats, nil
}
