package domain

import (
	"math"
	"math/rand/v2"
)

// StateCities lists a state and the cities incidents are generated for.
type StateCities struct {
	State  string
	Cities []string
}

// DefaultStates is the state/city table used for synthetic data.
var DefaultStates = []StateCities{
	{State: "Maharashtra", Cities: []string{"Mumbai", "Pune", "Nagpur", "Nashik"}},
	{State: "Gujarat", Cities: []string{"Ahmedabad", "Surat", "Vadodara"}},
	{State: "Karnataka", Cities: []string{"Bengaluru", "Mysuru", "Mangaluru"}},
	{State: "Tamil Nadu", Cities: []string{"Chennai", "Coimbatore", "Madurai"}},
	{State: "West Bengal", Cities: []string{"Kolkata", "Howrah", "Durgapur"}},
}

// DefaultDisasterTypes are the disaster categories used for synthetic data.
var DefaultDisasterTypes = []string{"Flood", "Fire", "Cyclone", "Earthquake", "Landslide"}

// Generator produces synthetic incidents. The same seed always yields the
// same sequence.
type Generator struct {
	rng           *rand.Rand
	states        []StateCities
	disasterTypes []string
	scorer        Scorer
}

// NewGenerator creates a Generator over the default state and disaster tables.
func NewGenerator(seed uint64, scorer Scorer) *Generator {
	return &Generator{
		rng:           rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		states:        DefaultStates,
		disasterTypes: DefaultDisasterTypes,
		scorer:        scorer,
	}
}

// Generate returns n incidents numbered from 1. Casualties fall in 0..40,
// loss in 0.1..80 crores (2dp), response time in 1..24 hours (1dp), month in
// 1..12 and year in 2015..2025.
func (g *Generator) Generate(n int) []Incident {
	out := make([]Incident, 0, n)
	for i := 1; i <= n; i++ {
		sc := g.states[g.rng.IntN(len(g.states))]
		inc := Incident{
			IncidentID:         i,
			State:              sc.State,
			City:               sc.Cities[g.rng.IntN(len(sc.Cities))],
			DisasterType:       g.disasterTypes[g.rng.IntN(len(g.disasterTypes))],
			Month:              1 + g.rng.IntN(12),
			Year:               2015 + g.rng.IntN(11),
			Casualties:         g.rng.IntN(41),
			EconomicLossCrores: round(g.uniform(0.1, 80), 2),
			ResponseTimeHours:  round(g.uniform(1, 24), 1),
		}
		out = append(out, g.scorer.Apply(inc))
	}
	return out
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// SampleIncidents returns the three hand-written incidents used for smoke
// testing downstream consumers, labelled by scorer.
func SampleIncidents(scorer Scorer) []Incident {
	rows := []Incident{
		{
			IncidentID: 1, State: "Maharashtra", City: "Pune", DisasterType: "Flood",
			Month: 7, Year: 2023, Casualties: 3, EconomicLossCrores: 10.5, ResponseTimeHours: 4.0,
		},
		{
			IncidentID: 2, State: "Gujarat", City: "Ahmedabad", DisasterType: "Earthquake",
			Month: 1, Year: 2022, Casualties: 10, EconomicLossCrores: 35.0, ResponseTimeHours: 6.0,
		},
		{
			IncidentID: 3, State: "Karnataka", City: "Bengaluru", DisasterType: "Fire",
			Month: 11, Year: 2024, Casualties: 1, EconomicLossCrores: 2.0, ResponseTimeHours: 2.5,
		},
	}
	for i := range rows {
		rows[i] = scorer.Apply(rows[i])
	}
	return rows
}
