package batch

import (
	"fmt"
	"strconv"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
)

// Forecast counts incidents per (state, month) in a prepared dataset and
// computes the rolling mean of those counts per state.
func Forecast(in *csvfile.Table, window int) ([]domain.ForecastRecord, error) {
	if err := in.Require(ColState, ColMonth); err != nil {
		return nil, err
	}

	incidents := make([]domain.Incident, 0, in.Len())
	for i, row := range in.Rows {
		state := in.Get(row, ColState)
		month, ok := domain.ParseWhole(in.Get(row, ColMonth))
		if state == "" || !ok {
			return nil, fmt.Errorf("line %d: state %q, month %q", i+2, state, in.Get(row, ColMonth))
		}
		incidents = append(incidents, domain.Incident{State: state, Month: month})
	}

	return domain.RollingForecast(domain.CountByStateMonth(incidents), window), nil
}

// ForecastTable renders forecast rows in the risk_forecast schema.
func ForecastTable(records []domain.ForecastRecord) *csvfile.Table {
	t := csvfile.NewTable(ForecastColumns...)
	for _, r := range records {
		t.Append(r.State, strconv.Itoa(r.Month), strconv.Itoa(r.Count), domain.FormatNumber(r.ForecastRisk))
	}
	return t
}
