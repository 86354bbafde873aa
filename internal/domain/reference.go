package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteRecord marks a reference-dataset row with missing or
// non-numeric values.
var ErrIncompleteRecord = errors.New("incomplete record")

// Column maps a source header onto the normalized column name.
type Column struct {
	Source string
	Name   string
}

// UnknownText replaces missing EM-DAT text values.
const UnknownText = "Unknown"

// EMDATColumns are the EM-DAT export columns kept by the cleaner, in output
// order before the derived score columns.
var EMDATColumns = []Column{
	{Source: "Disaster Type", Name: "disaster_type"},
	{Source: "Disaster Subtype", Name: "disaster_subtype"},
	{Source: "Country", Name: "country"},
	{Source: "Region", Name: "region"},
	{Source: "Location", Name: "location"},
	{Source: "Start Year", Name: "year"},
	{Source: "Start Month", Name: "month"},
	{Source: "Total Deaths", Name: "total_deaths"},
	{Source: "No. Injured", Name: "injured"},
	{Source: "Total Affected", Name: "affected"},
	{Source: "Total Damage", Name: "damage"},
	{Source: "Magnitude", Name: "magnitude"},
	{Source: "Latitude", Name: "latitude"},
	{Source: "Longitude", Name: "longitude"},
}

// EMDATRecord is a cleaned row of the EM-DAT export.
type EMDATRecord struct {
	DisasterType    string
	DisasterSubtype string
	Country         string
	Region          string
	Location        string
	Year            float64
	Month           float64
	TotalDeaths     float64
	Injured         float64
	Affected        float64
	Damage          float64
	Magnitude       float64
	Latitude        float64
	Longitude       float64
	SeverityScore   float64
	Severity        Severity
}

// NewEMDATRecord builds a record from fields keyed by normalized column
// name. Missing or malformed numbers become 0 and missing text becomes
// "Unknown".
func NewEMDATRecord(fields map[string]string) EMDATRecord {
	num := func(name string) float64 { return ParseNumberOrZero(fields[name]) }
	text := func(name string) string { return TextOrDefault(fields[name], UnknownText) }

	return EMDATRecord{
		DisasterType:    text("disaster_type"),
		DisasterSubtype: text("disaster_subtype"),
		Country:         text("country"),
		Region:          text("region"),
		Location:        text("location"),
		Year:            num("year"),
		Month:           num("month"),
		TotalDeaths:     num("total_deaths"),
		Injured:         num("injured"),
		Affected:        num("affected"),
		Damage:          num("damage"),
		Magnitude:       num("magnitude"),
		Latitude:        num("latitude"),
		Longitude:       num("longitude"),
	}
}

// Scored returns a copy with the severity score and label filled in.
func (r EMDATRecord) Scored(w EMDATWeights, t Thresholds) EMDATRecord {
	r.SeverityScore = w.Score(r.TotalDeaths, r.Affected, r.Damage, r.Magnitude)
	r.Severity = t.Label(r.SeverityScore)
	return r
}

// Values renders the record in EMDATColumns order followed by
// severity_score and severity.
func (r EMDATRecord) Values() []string {
	return []string{
		r.DisasterType, r.DisasterSubtype, r.Country, r.Region, r.Location,
		FormatNumber(r.Year), FormatNumber(r.Month),
		FormatNumber(r.TotalDeaths), FormatNumber(r.Injured), FormatNumber(r.Affected),
		FormatNumber(r.Damage), FormatNumber(r.Magnitude),
		FormatNumber(r.Latitude), FormatNumber(r.Longitude),
		FormatNumber(r.SeverityScore), string(r.Severity),
	}
}

// WRIColumns are the World Risk Index columns kept by the cleaner.
var WRIColumns = []Column{
	{Source: "Region", Name: "region"},
	{Source: "Year", Name: "year"},
	{Source: "WRI", Name: "wri"},
	{Source: "Exposure", Name: "exposure"},
	{Source: "Vulnerability", Name: "vulnerability"},
	{Source: "Susceptibility", Name: "susceptibility"},
	{Source: "Lack of Coping Capabilities", Name: "coping"},
	{Source: "Lack of Adaptive Capacities", Name: "adaptive"},
	{Source: "WRI Category", Name: "risk_category"},
}

// WRIRecord is a cleaned row of the World Risk Index table.
type WRIRecord struct {
	Region         string
	Year           float64
	WRI            float64
	Exposure       float64
	Vulnerability  float64
	Susceptibility float64
	Coping         float64
	Adaptive       float64
	RiskCategory   string
}

// ParseWRIRecord builds a record from fields keyed by normalized column
// name. Any missing value, or a numeric column that does not parse, rejects
// the whole row.
func ParseWRIRecord(fields map[string]string) (WRIRecord, error) {
	rec := WRIRecord{
		Region:       strings.TrimSpace(fields["region"]),
		RiskCategory: strings.TrimSpace(fields["risk_category"]),
	}
	if rec.Region == "" || rec.RiskCategory == "" {
		return WRIRecord{}, fmt.Errorf("%w: region and risk_category are required", ErrIncompleteRecord)
	}

	numeric := []struct {
		name string
		dst  *float64
	}{
		{"year", &rec.Year},
		{"wri", &rec.WRI},
		{"exposure", &rec.Exposure},
		{"vulnerability", &rec.Vulnerability},
		{"susceptibility", &rec.Susceptibility},
		{"coping", &rec.Coping},
		{"adaptive", &rec.Adaptive},
	}
	for _, n := range numeric {
		v, ok := ParseNumber(fields[n.name])
		if !ok {
			return WRIRecord{}, fmt.Errorf("%w: %s %q", ErrIncompleteRecord, n.name, fields[n.name])
		}
		*n.dst = v
	}
	return rec, nil
}

// Values renders the record in WRIColumns order.
func (r WRIRecord) Values() []string {
	return []string{
		r.Region, FormatNumber(r.Year), FormatNumber(r.WRI), FormatNumber(r.Exposure),
		FormatNumber(r.Vulnerability), FormatNumber(r.Susceptibility),
		FormatNumber(r.Coping), FormatNumber(r.Adaptive), r.RiskCategory,
	}
}

// ColumnNames returns the normalized names of cols.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
