package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() RawIncidentRecord {
	return RawIncidentRecord{
		IncidentID:         "2",
		State:              "Gujarat",
		City:               "Ahmedabad",
		DisasterType:       "Earthquake",
		Month:              "1",
		Year:               "2022",
		Casualties:         "10",
		EconomicLossCrores: "35.0",
		ResponseTimeHours:  "6.0",
	}
}

func TestParseRawEvent(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		data := []byte(`{"incident_id":"2","state":"Gujarat","city":"Ahmedabad","disaster_type":"Earthquake","month":"1","year":"2022","casualties":"10","economic_loss_crores":"35.0","response_time_hours":"6.0"}`)
		result, err := ParseRawEvent(RawEvent{Value: data})

		require.NoError(t, err)
		assert.Equal(t, 2, result.IncidentID)
		assert.Equal(t, "Gujarat", result.State)
		assert.Equal(t, "Ahmedabad", result.City)
		assert.Equal(t, "Earthquake", result.DisasterType)
		assert.Equal(t, 1, result.Month)
		assert.Equal(t, 2022, result.Year)
		assert.Equal(t, 10, result.Casualties)
		assert.Equal(t, 35.0, result.EconomicLossCrores)
		assert.Equal(t, 6.0, result.ResponseTimeHours)
		assert.Equal(t, data, result.RawPayload)
		assert.Empty(t, result.Severity, "parse must not score")
	})

	t.Run("numeric fields", func(t *testing.T) {
		data := []byte(`{"incident_id":2,"state":"Gujarat","city":"Ahmedabad","disaster_type":"Earthquake","month":1,"year":2022,"casualties":10,"economic_loss_crores":35.0,"response_time_hours":6}`)
		result, err := ParseRawEvent(RawEvent{Value: data})

		require.NoError(t, err)
		assert.Equal(t, 2, result.IncidentID)
		assert.Equal(t, 1, result.Month)
		assert.Equal(t, 10, result.Casualties)
		assert.Equal(t, 35.0, result.EconomicLossCrores)
		assert.Equal(t, 6.0, result.ResponseTimeHours)
	})

	t.Run("null incident id", func(t *testing.T) {
		data := []byte(`{"incident_id":null,"state":"Gujarat","city":"Ahmedabad","disaster_type":"Earthquake","month":1,"year":2022,"casualties":10,"economic_loss_crores":"35.0","response_time_hours":"6.0"}`)
		result, err := ParseRawEvent(RawEvent{Value: data})

		require.NoError(t, err)
		assert.Zero(t, result.IncidentID)
	})

	t.Run("non-scalar field", func(t *testing.T) {
		_, err := ParseRawEvent(RawEvent{Value: []byte(`{"state":"Gujarat","month":[7]}`)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "field month")
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseRawEvent(RawEvent{Value: []byte("not json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse raw event")
	})

	t.Run("invalid incident", func(t *testing.T) {
		_, err := ParseRawEvent(RawEvent{Value: []byte(`{"state":"Gujarat"}`)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidIncident))
	})
}

func TestParseIncident_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawIncidentRecord)
		field  string
	}{
		{"missing state", func(r *RawIncidentRecord) { r.State = " " }, "state"},
		{"missing city", func(r *RawIncidentRecord) { r.City = "" }, "city"},
		{"month zero", func(r *RawIncidentRecord) { r.Month = "0" }, "month"},
		{"month thirteen", func(r *RawIncidentRecord) { r.Month = "13" }, "month"},
		{"month fractional", func(r *RawIncidentRecord) { r.Month = "6.5" }, "month"},
		{"year text", func(r *RawIncidentRecord) { r.Year = "twenty" }, "year"},
		{"negative casualties", func(r *RawIncidentRecord) { r.Casualties = "-1" }, "casualties"},
		{"casualties nan", func(r *RawIncidentRecord) { r.Casualties = "NaN" }, "casualties"},
		{"negative loss", func(r *RawIncidentRecord) { r.EconomicLossCrores = "-0.5" }, "economic_loss_crores"},
		{"zero response", func(r *RawIncidentRecord) { r.ResponseTimeHours = "0" }, "response_time_hours"},
		{"missing response", func(r *RawIncidentRecord) { r.ResponseTimeHours = "" }, "response_time_hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)
			_, err := ParseIncident(rec)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidIncident)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestParseIncident_Coercion(t *testing.T) {
	rec := validRecord()
	rec.Month = "7.0"
	rec.Casualties = " 3 "
	rec.IncidentID = "abc"

	inc, err := ParseIncident(rec)
	require.NoError(t, err)
	assert.Equal(t, 7, inc.Month)
	assert.Equal(t, 3, inc.Casualties)
	assert.Zero(t, inc.IncidentID)
}

func TestEnrichIncident(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.July, 1, 9, 30, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(nil) })

	inc, err := ParseIncident(validRecord())
	require.NoError(t, err)

	out := EnrichIncident(inc, DefaultScorer)

	assert.Equal(t, SeasonWinter, out.Season)
	assert.InDelta(t, 21.6, out.RiskScore, 1e-9)
	assert.Equal(t, SeverityMedium, out.Severity)
	assert.True(t, strings.HasPrefix(out.ID, "earthquake-"))
	assert.Equal(t, fakeClock.Now(), out.ProcessedAt)
}

func TestGenerateID(t *testing.T) {
	a := Incident{State: "Kerala", City: "Kochi", DisasterType: "Flood", Year: 2020, Month: 8, Casualties: 4, EconomicLossCrores: 1.5, ResponseTimeHours: 3}

	id1 := generateID(a)
	id2 := generateID(a)
	assert.Equal(t, id1, id2, "IDs must be deterministic")
	assert.True(t, strings.HasPrefix(id1, "flood-"))

	b := a
	b.Casualties = 5
	assert.NotEqual(t, id1, generateID(b))

	c := a
	c.DisasterType = "Flash Flood"
	assert.True(t, strings.HasPrefix(generateID(c), "flash-flood-"))

	d := a
	d.DisasterType = ""
	assert.Len(t, generateID(d), 16)
}

func TestGenerateID_IncidentNumber(t *testing.T) {
	a := Incident{State: "Gujarat", City: "Surat", DisasterType: "Flood", Year: 2021, Month: 7, Casualties: 2, EconomicLossCrores: 3, ResponseTimeHours: 5}

	first, second := a, a
	first.IncidentID = 1
	second.IncidentID = 2
	assert.NotEqual(t, generateID(first), generateID(second))
	assert.NotEqual(t, generateID(a), generateID(first))
	assert.Equal(t, generateID(first), generateID(first))
}

func TestSetClock(t *testing.T) {
	fixed := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	assert.Equal(t, fixed, clock.Now())

	SetClock(nil)
	assert.WithinDuration(t, time.Now(), clock.Now(), time.Second)
}

func TestIncidentRaw_ParsesBack(t *testing.T) {
	for _, want := range NewGenerator(3, DefaultScorer).Generate(25) {
		got, err := ParseIncident(want.Raw())
		require.NoError(t, err)

		assert.Equal(t, want.IncidentID, got.IncidentID)
		assert.Equal(t, want.Casualties, got.Casualties)
		assert.Equal(t, want.EconomicLossCrores, got.EconomicLossCrores)
		assert.Equal(t, want.ResponseTimeHours, got.ResponseTimeHours)
		assert.Equal(t, want.RiskScore, DefaultScorer.Apply(got).RiskScore)
	}
}
