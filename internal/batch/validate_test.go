package batch

import (
	"testing"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validate(t *csvfile.Table, expected []string) Report {
	return Validate(t, expected, domain.IncidentThresholds, domain.EMDATThresholds)
}

func TestValidate_FinalDataset(t *testing.T) {
	incidents := domain.NewGenerator(11, domain.DefaultScorer).Generate(100)

	r := validate(FinalTable(incidents), FinalColumns)
	assert.True(t, r.OK(), "failures: %v", r.Failures)
	assert.Equal(t, 100, r.Rows)
}

func TestValidate_ColumnOrderIgnored(t *testing.T) {
	in := csvfile.NewTable(ColMonth, ColCount, ColState, ColForecastRisk)
	in.Append("4", "2", "Kerala", "2")

	r := validate(in, ForecastColumns)
	assert.True(t, r.OK(), "failures: %v", r.Failures)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		row      []string
		expected []string
		wantMsg  string
	}{
		{
			name:    "label inconsistent with score",
			row:     []string{"Gujarat", "Ahmedabad", "Earthquake", "1", "2022", "10", "35", "6", "Winter", "21.6", "High"},
			wantMsg: `severity "High"`,
		},
		{
			name:    "season inconsistent with month",
			row:     []string{"Gujarat", "Ahmedabad", "Earthquake", "1", "2022", "10", "35", "6", "Monsoon", "21.6", "Medium"},
			wantMsg: `season "Monsoon"`,
		},
		{
			name:    "month out of range",
			row:     []string{"Gujarat", "Ahmedabad", "Earthquake", "0", "2022", "10", "35", "6", "Winter", "21.6", "Medium"},
			wantMsg: "out of range",
		},
		{
			name:    "non-numeric score",
			row:     []string{"Gujarat", "Ahmedabad", "Earthquake", "1", "2022", "10", "35", "6", "Winter", "n/a", "Medium"},
			wantMsg: "not numeric",
		},
		{
			name:     "wrong column set",
			row:      []string{"Gujarat", "Ahmedabad", "Earthquake", "1", "2022", "10", "35", "6", "Winter", "21.6", "Medium"},
			expected: FullColumns,
			wantMsg:  "columns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := csvfile.NewTable(FinalColumns...)
			in.Append(tt.row...)

			expected := tt.expected
			if expected == nil {
				expected = FinalColumns
			}
			r := validate(in, expected)
			require.False(t, r.OK())
			assert.Contains(t, r.Failures[0], tt.wantMsg)
		})
	}
}

func TestValidate_BoundaryScoreTolerance(t *testing.T) {
	in := csvfile.NewTable(FinalColumns...)
	// 34.9999999999 was rounded up when written; either side of 35 is accepted.
	in.Append("Kerala", "Kochi", "Flood", "7", "2020", "40", "44", "1.5", "Monsoon", "34.9999999999", "High")

	r := validate(in, FinalColumns)
	assert.True(t, r.OK(), "failures: %v", r.Failures)
}

func TestValidate_EMDAT(t *testing.T) {
	in := csvfile.NewTable(EMDATOutputColumns()...)
	rec := domain.NewEMDATRecord(map[string]string{"year": "2019", "total_deaths": "100"})
	in.Append(rec.Scored(domain.DefaultEMDATWeights, domain.EMDATThresholds).Values()...)

	r := validate(in, Schemas["emdat"])
	assert.True(t, r.OK(), "failures: %v", r.Failures)

	// 40 is High for EM-DAT but would be High at 35 too; 36 separates them.
	in.Rows[0][len(in.Header)-2] = "36"
	in.Rows[0][len(in.Header)-1] = "High"
	r = validate(in, Schemas["emdat"])
	require.False(t, r.OK())
	assert.Contains(t, r.Failures[0], `want "Medium"`)
}

func TestSchemaNames(t *testing.T) {
	assert.Equal(t, []string{"emdat", "final", "forecast", "full", "wri"}, SchemaNames())
}
