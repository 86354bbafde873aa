package batch

import (
	"errors"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
)

// ColSeverityScore is the EM-DAT score column.
const ColSeverityScore = "severity_score"

// emdatYearSource is the one EM-DAT column the cleaner cannot do without.
const emdatYearSource = "Start Year"

// EMDATStats reports what CleanEMDAT did with its input.
type EMDATStats struct {
	Read           int
	Skipped        int // malformed lines dropped by the reader
	DroppedYear    int
	Written        int
	MissingColumns []string
}

// EMDATOutputColumns is the schema of emdat_processed.
func EMDATOutputColumns() []string {
	return append(domain.ColumnNames(domain.EMDATColumns), ColSeverityScore, ColSeverity)
}

// CleanEMDAT normalizes an EM-DAT export: expected columns are renamed,
// absent ones are reported and filled (0 or "Unknown"), rows without a
// positive start year are dropped and every row is scored.
func CleanEMDAT(in *csvfile.Table, w domain.EMDATWeights, t domain.Thresholds) (*csvfile.Table, EMDATStats, error) {
	stats := EMDATStats{Read: in.Len(), Skipped: in.Skipped}

	rename := make(map[string]string, len(domain.EMDATColumns))
	for _, c := range domain.EMDATColumns {
		if !in.Has(c.Source) {
			stats.MissingColumns = append(stats.MissingColumns, c.Source)
			continue
		}
		rename[c.Source] = c.Name
	}
	if _, ok := rename[emdatYearSource]; !ok {
		return nil, stats, in.Require(emdatYearSource)
	}

	names := domain.ColumnNames(domain.EMDATColumns)
	out := csvfile.NewTable(EMDATOutputColumns()...)
	for _, row := range in.Rows {
		fields := make(map[string]string, len(names))
		for src, name := range rename {
			fields[name] = in.Get(row, src)
		}
		rec := domain.NewEMDATRecord(fields)
		if rec.Year <= 0 {
			stats.DroppedYear++
			continue
		}
		out.Append(rec.Scored(w, t).Values()...)
	}

	stats.Written = out.Len()
	return out, stats, nil
}

// WRIStats reports what CleanWRI did with its input.
type WRIStats struct {
	Read       int
	Incomplete int
	Written    int
}

// CleanWRI selects and renames the World Risk Index columns and drops rows
// with a missing or non-numeric value. Header whitespace must already be
// trimmed (see csvfile.WithTrimHeader).
func CleanWRI(in *csvfile.Table) (*csvfile.Table, WRIStats, error) {
	stats := WRIStats{Read: in.Len()}

	sources := make([]string, len(domain.WRIColumns))
	for i, c := range domain.WRIColumns {
		sources[i] = c.Source
	}
	if err := in.Require(sources...); err != nil {
		return nil, stats, err
	}

	out := csvfile.NewTable(domain.ColumnNames(domain.WRIColumns)...)
	for _, row := range in.Rows {
		fields := make(map[string]string, len(domain.WRIColumns))
		for _, c := range domain.WRIColumns {
			fields[c.Name] = in.Get(row, c.Source)
		}
		rec, err := domain.ParseWRIRecord(fields)
		if errors.Is(err, domain.ErrIncompleteRecord) {
			stats.Incomplete++
			continue
		}
		if err != nil {
			return nil, stats, err
		}
		out.Append(rec.Values()...)
	}

	stats.Written = out.Len()
	return out, stats, nil
}
