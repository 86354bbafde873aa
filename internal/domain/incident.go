package domain

import (
	"context"
	"time"
)

// Severity is the three-level ordinal label derived from a risk score.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Season is one of the four climatological buckets a month falls into.
type Season string

const (
	SeasonWinter      Season = "Winter"
	SeasonSummer      Season = "Summer"
	SeasonMonsoon     Season = "Monsoon"
	SeasonPostMonsoon Season = "Post-Monsoon"
)

// Coordinate sources recorded on an incident after coordinate enrichment.
const (
	GeoSourceMapping  = "mapping"
	GeoSourceMapbox   = "mapbox"
	GeoSourceFallback = "fallback"
)

// RawIncidentRecord is the flat JSON structure published by upstream
// producers. Fields arrive as JSON strings or numbers and are kept as text
// until ParseIncident coerces them.
type RawIncidentRecord struct {
	IncidentID         string `json:"incident_id"`
	State              string `json:"state"`
	City               string `json:"city"`
	DisasterType       string `json:"disaster_type"`
	Month              string `json:"month"`
	Year               string `json:"year"`
	Casualties         string `json:"casualties"`
	EconomicLossCrores string `json:"economic_loss_crores"`
	ResponseTimeHours  string `json:"response_time_hours"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsZero reports whether both coordinates are unset.
func (g Geo) IsZero() bool {
	return g.Lat == 0 && g.Lon == 0
}

// Incident is a single disaster incident with its derived features.
type Incident struct {
	ID                 string   `json:"id,omitempty"`
	IncidentID         int      `json:"incident_id,omitempty"`
	State              string   `json:"state"`
	City               string   `json:"city"`
	DisasterType       string   `json:"disaster_type"`
	Month              int      `json:"month"`
	Year               int      `json:"year"`
	Casualties         int      `json:"casualties"`
	EconomicLossCrores float64  `json:"economic_loss_crores"`
	ResponseTimeHours  float64  `json:"response_time_hours"`
	Season             Season   `json:"season,omitempty"`
	RiskScore          float64  `json:"risk_score"`
	Severity           Severity `json:"severity,omitempty"`

	Geo       Geo    `json:"geo"`
	GeoSource string `json:"geo_source,omitempty"` // "mapping", "mapbox", "fallback"

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}

// ForecastRecord is one (state, month) row of the rolling risk forecast.
type ForecastRecord struct {
	State        string  `json:"state"`
	Month        int     `json:"month"`
	Count        int     `json:"count"`
	ForecastRisk float64 `json:"forecast_risk"`
}
