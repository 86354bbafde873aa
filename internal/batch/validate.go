package batch

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
)

// scoreTolerance absorbs the rounding of scores written with limited
// precision by other tools.
const scoreTolerance = 1e-6

// Schemas maps the names accepted by the validate command onto the column
// sets of the files the jobs produce.
var Schemas = map[string][]string{
	"full":     FullColumns,
	"final":    FinalColumns,
	"forecast": ForecastColumns,
	"emdat":    EMDATOutputColumns(),
	"wri":      domain.ColumnNames(domain.WRIColumns),
}

// SchemaNames returns the keys of Schemas in sorted order.
func SchemaNames() []string {
	return slices.Sorted(maps.Keys(Schemas))
}

// Report collects validation failures for one table.
type Report struct {
	Rows     int
	Failures []string
}

// OK reports whether no check failed.
func (r *Report) OK() bool {
	return len(r.Failures) == 0
}

func (r *Report) failf(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// Validate checks a produced table: the column set must equal expected (when
// non-nil), a write-then-read round trip must keep the columns and row
// count, and rows must be internally consistent. Consistency checks run for
// whichever of these column groups are present: month in 1..12 for
// incident tables (those with a state column), season matching month,
// severity matching risk_score, or severity matching severity_score.
func Validate(t *csvfile.Table, expected []string, incident, emdat domain.Thresholds) Report {
	r := Report{Rows: t.Len()}

	if expected != nil && !sameColumns(t.Header, expected) {
		r.failf("columns %v, want %v", t.Header, expected)
	}
	if err := roundTrip(t); err != nil {
		r.failf("round trip: %v", err)
	}

	for i, row := range t.Rows {
		line := i + 2
		month, hasMonth := 0, false
		if t.Has(ColMonth) && t.Has(ColState) {
			m, ok := domain.ParseWhole(t.Get(row, ColMonth))
			if !ok || !domain.ValidMonth(m) {
				r.failf("line %d: month %q out of range", line, t.Get(row, ColMonth))
			} else {
				month, hasMonth = m, true
			}
		}
		if hasMonth && t.Has(ColSeason) {
			if got, want := t.Get(row, ColSeason), domain.SeasonOf(month); got != string(want) {
				r.failf("line %d: season %q, want %q", line, got, want)
			}
		}
		if t.Has(ColSeverity) {
			switch {
			case t.Has(ColRiskScore):
				checkLabel(&r, line, t.Get(row, ColRiskScore), t.Get(row, ColSeverity), incident)
			case t.Has(ColSeverityScore):
				checkLabel(&r, line, t.Get(row, ColSeverityScore), t.Get(row, ColSeverity), emdat)
			}
		}
	}
	return r
}

func checkLabel(r *Report, line int, rawScore, label string, t domain.Thresholds) {
	score, ok := domain.ParseNumber(rawScore)
	if !ok {
		r.failf("line %d: score %q is not numeric", line, rawScore)
		return
	}
	want := t.Label(score)
	if label == string(want) {
		return
	}
	// A score sitting on a threshold may have been rounded across it.
	if label == string(t.Label(score+scoreTolerance)) || label == string(t.Label(score-scoreTolerance)) {
		return
	}
	r.failf("line %d: severity %q for score %s, want %q", line, label, rawScore, want)
}

func sameColumns(got, want []string) bool {
	a, b := slices.Clone(got), slices.Clone(want)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

func roundTrip(t *csvfile.Table) error {
	var buf bytes.Buffer
	if err := csvfile.Write(&buf, t); err != nil {
		return err
	}
	back, err := csvfile.Read(&buf)
	if err != nil {
		return err
	}
	if !sameColumns(back.Header, t.Header) {
		return fmt.Errorf("columns changed: %v -> %v", t.Header, back.Header)
	}
	if back.Len() != t.Len() {
		return fmt.Errorf("row count changed: %d -> %d", t.Len(), back.Len())
	}
	return nil
}
