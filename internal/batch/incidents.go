// Package batch implements the one-shot dataset jobs: each takes a CSV table
// and returns a new one, leaving file I/O to the commands.
package batch

import (
	"strconv"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
)

// Incident column names.
const (
	ColIncidentID   = "incident_id"
	ColState        = "state"
	ColCity         = "city"
	ColDisasterType = "disaster_type"
	ColMonth        = "month"
	ColYear         = "year"
	ColCasualties   = "casualties"
	ColLoss         = "economic_loss_crores"
	ColResponse     = "response_time_hours"
	ColSeason       = "season"
	ColRiskScore    = "risk_score"
	ColSeverity     = "severity"
	ColLatitude     = "latitude"
	ColLongitude    = "longitude"
	ColCount        = "count"
	ColForecastRisk = "forecast_risk"
)

var (
	// RawColumns are the fields every incident input must carry.
	RawColumns = []string{
		ColState, ColCity, ColDisasterType, ColMonth, ColYear,
		ColCasualties, ColLoss, ColResponse,
	}

	// FullColumns is the schema of the generated incidents_full and
	// incidents_small files.
	FullColumns = []string{
		ColIncidentID, ColState, ColCity, ColDisasterType, ColMonth, ColYear,
		ColCasualties, ColLoss, ColResponse, ColSeverity,
	}

	// FinalColumns is the schema of final_dataset.
	FinalColumns = []string{
		ColState, ColCity, ColDisasterType, ColMonth, ColYear,
		ColCasualties, ColLoss, ColResponse, ColSeason, ColRiskScore, ColSeverity,
	}

	// ForecastColumns is the schema of risk_forecast.
	ForecastColumns = []string{ColState, ColMonth, ColCount, ColForecastRisk}
)

// FullTable renders generated incidents in the incidents_full schema.
func FullTable(incidents []domain.Incident) *csvfile.Table {
	t := csvfile.NewTable(FullColumns...)
	for i := range incidents {
		inc := &incidents[i]
		t.Append(
			strconv.Itoa(inc.IncidentID), inc.State, inc.City, inc.DisasterType,
			strconv.Itoa(inc.Month), strconv.Itoa(inc.Year), strconv.Itoa(inc.Casualties),
			domain.FormatNumber(inc.EconomicLossCrores), domain.FormatNumber(inc.ResponseTimeHours),
			string(inc.Severity),
		)
	}
	return t
}

// FinalTable renders scored incidents in the final_dataset schema.
func FinalTable(incidents []domain.Incident) *csvfile.Table {
	t := csvfile.NewTable(FinalColumns...)
	for i := range incidents {
		inc := &incidents[i]
		t.Append(
			inc.State, inc.City, inc.DisasterType,
			strconv.Itoa(inc.Month), strconv.Itoa(inc.Year), strconv.Itoa(inc.Casualties),
			domain.FormatNumber(inc.EconomicLossCrores), domain.FormatNumber(inc.ResponseTimeHours),
			string(inc.Season), domain.FormatNumber(inc.RiskScore), string(inc.Severity),
		)
	}
	return t
}

// rawRecord reads the incident fields of a row. Absent columns yield "".
func rawRecord(t *csvfile.Table, row []string) domain.RawIncidentRecord {
	return domain.RawIncidentRecord{
		IncidentID:         t.Get(row, ColIncidentID),
		State:              t.Get(row, ColState),
		City:               t.Get(row, ColCity),
		DisasterType:       t.Get(row, ColDisasterType),
		Month:              t.Get(row, ColMonth),
		Year:               t.Get(row, ColYear),
		Casualties:         t.Get(row, ColCasualties),
		EconomicLossCrores: t.Get(row, ColLoss),
		ResponseTimeHours:  t.Get(row, ColResponse),
	}
}
