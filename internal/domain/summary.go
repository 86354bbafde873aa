package domain

// Summary holds the incident breakdowns shown on the analytics dashboard.
type Summary struct {
	Total          int            `json:"total"`
	BySeverity     map[string]int `json:"by_severity"`
	ByState        map[string]int `json:"by_state"`
	ByDisasterType map[string]int `json:"by_disaster_type"`
}

// NewSummary returns an empty summary with initialized maps.
func NewSummary() Summary {
	return Summary{
		BySeverity:     map[string]int{},
		ByState:        map[string]int{},
		ByDisasterType: map[string]int{},
	}
}

// Summarize counts incidents by severity, state and disaster type.
func Summarize(incidents []Incident) Summary {
	s := NewSummary()
	for i := range incidents {
		s.Add(incidents[i])
	}
	return s
}

// Add counts one incident.
func (s *Summary) Add(inc Incident) {
	s.Total++
	s.BySeverity[string(inc.Severity)]++
	s.ByState[inc.State]++
	s.ByDisasterType[inc.DisasterType]++
}
