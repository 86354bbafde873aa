package domain

import "fmt"

// Weights is the linear combination used to score an incident.
// ResponseBase is the number of hours a response time is subtracted from,
// so faster responses lower the score.
type Weights struct {
	Casualties   float64
	Loss         float64
	Response     float64
	ResponseBase float64
}

// IncidentWeights are the weights applied to incident records.
var IncidentWeights = Weights{
	Casualties:   0.4,
	Loss:         0.4,
	Response:     0.2,
	ResponseBase: 24,
}

// Score computes the weighted risk score for the given impact metrics.
func (w Weights) Score(casualties, loss, responseHours float64) float64 {
	return casualties*w.Casualties +
		loss*w.Loss +
		(w.ResponseBase-responseHours)*w.Response
}

// EMDATWeights is the linear combination used for the EM-DAT dataset variant.
type EMDATWeights struct {
	Deaths    float64
	Affected  float64
	Damage    float64
	Magnitude float64
}

// DefaultEMDATWeights are the weights applied to EM-DAT records.
var DefaultEMDATWeights = EMDATWeights{
	Deaths:    0.4,
	Affected:  0.3,
	Damage:    0.2,
	Magnitude: 0.1,
}

// Score computes the weighted severity score for an EM-DAT record.
func (w EMDATWeights) Score(deaths, affected, damage, magnitude float64) float64 {
	return deaths*w.Deaths +
		affected*w.Affected +
		damage*w.Damage +
		magnitude*w.Magnitude
}

// Thresholds are the label boundaries: scores below Medium are Low, scores
// below High are Medium, everything else is High.
type Thresholds struct {
	Medium float64
	High   float64
}

var (
	// IncidentThresholds label incident risk scores.
	IncidentThresholds = Thresholds{Medium: 15, High: 35}

	// EMDATThresholds label EM-DAT severity scores.
	EMDATThresholds = Thresholds{Medium: 15, High: 40}
)

// Label maps a score onto its severity. The mapping is monotonic
// non-decreasing in score.
func (t Thresholds) Label(score float64) Severity {
	switch {
	case score < t.Medium:
		return SeverityLow
	case score < t.High:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// Validate rejects threshold pairs that would make the Medium band empty or
// inverted.
func (t Thresholds) Validate() error {
	if t.Medium > t.High {
		return fmt.Errorf("medium threshold %g exceeds high threshold %g", t.Medium, t.High)
	}
	return nil
}

// Scorer derives season, risk score and severity for incidents.
type Scorer struct {
	Weights    Weights
	Thresholds Thresholds
}

// DefaultScorer uses the incident weights and the 15/35 thresholds.
var DefaultScorer = Scorer{Weights: IncidentWeights, Thresholds: IncidentThresholds}

// Apply fills the derived fields of an incident. The input is not modified.
func (s Scorer) Apply(inc Incident) Incident {
	inc.Season = SeasonOf(inc.Month)
	inc.RiskScore = s.Weights.Score(float64(inc.Casualties), inc.EconomicLossCrores, inc.ResponseTimeHours)
	inc.Severity = s.Thresholds.Label(inc.RiskScore)
	return inc
}
