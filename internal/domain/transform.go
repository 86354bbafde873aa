package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidIncident marks a record that fails coercion or range checks.
// Batch jobs drop such rows; the streaming pipeline skips the message.
var ErrInvalidIncident = errors.New("invalid incident")

// ParseRawEvent deserializes a RawEvent's value into an Incident.
// It expects the flat JSON produced by upstream incident producers.
func ParseRawEvent(raw RawEvent) (Incident, error) {
	var rec RawIncidentRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Incident{}, fmt.Errorf("parse raw event: %w", err)
	}

	inc, err := ParseIncident(rec)
	if err != nil {
		return Incident{}, err
	}
	inc.RawPayload = raw.Value
	return inc, nil
}

// UnmarshalJSON accepts every field as either a JSON string or a JSON
// number, so producers may send "month": 7 as well as "month": "7".
// Null and absent fields decode as empty.
func (r *RawIncidentRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	targets := map[string]*string{
		"incident_id":          &r.IncidentID,
		"state":                &r.State,
		"city":                 &r.City,
		"disaster_type":        &r.DisasterType,
		"month":                &r.Month,
		"year":                 &r.Year,
		"casualties":           &r.Casualties,
		"economic_loss_crores": &r.EconomicLossCrores,
		"response_time_hours":  &r.ResponseTimeHours,
	}
	for key, dst := range targets {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		v, err := scalarText(raw)
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		*dst = v
	}
	return nil
}

func scalarText(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	default:
		return "", fmt.Errorf("want string or number, got %s", bytes.TrimSpace(raw))
	}
}

// ParseIncident coerces the string fields of a raw record and applies the
// dataset's validity rules: text fields must be present, numeric fields must
// parse, month must be 1-12, casualties and loss must be non-negative, and
// response time must be positive.
func ParseIncident(rec RawIncidentRecord) (Incident, error) {
	inc := Incident{
		State:        strings.TrimSpace(rec.State),
		City:         strings.TrimSpace(rec.City),
		DisasterType: strings.TrimSpace(rec.DisasterType),
	}
	if inc.State == "" || inc.City == "" || inc.DisasterType == "" {
		return Incident{}, fmt.Errorf("%w: state, city and disaster_type are required", ErrInvalidIncident)
	}

	var ok bool
	if inc.Month, ok = ParseWhole(rec.Month); !ok || !ValidMonth(inc.Month) {
		return Incident{}, fmt.Errorf("%w: month %q", ErrInvalidIncident, rec.Month)
	}
	if inc.Year, ok = ParseWhole(rec.Year); !ok {
		return Incident{}, fmt.Errorf("%w: year %q", ErrInvalidIncident, rec.Year)
	}
	if inc.Casualties, ok = ParseWhole(rec.Casualties); !ok || inc.Casualties < 0 {
		return Incident{}, fmt.Errorf("%w: casualties %q", ErrInvalidIncident, rec.Casualties)
	}
	if inc.EconomicLossCrores, ok = ParseNumber(rec.EconomicLossCrores); !ok || inc.EconomicLossCrores < 0 {
		return Incident{}, fmt.Errorf("%w: economic_loss_crores %q", ErrInvalidIncident, rec.EconomicLossCrores)
	}
	if inc.ResponseTimeHours, ok = ParseNumber(rec.ResponseTimeHours); !ok || inc.ResponseTimeHours <= 0 {
		return Incident{}, fmt.Errorf("%w: response_time_hours %q", ErrInvalidIncident, rec.ResponseTimeHours)
	}

	// incident_id is informational; a missing or malformed value leaves it unset.
	inc.IncidentID, _ = ParseWhole(rec.IncidentID)

	return inc, nil
}

// EnrichIncident scores and labels a parsed incident, assigns its
// deterministic ID and stamps the processing time.
func EnrichIncident(inc Incident, scorer Scorer) Incident {
	inc = scorer.Apply(inc)
	inc.ID = generateID(inc)
	inc.ProcessedAt = clock.Now()
	return inc
}

// generateID produces a deterministic ID from the incident's key fields so
// that reprocessing the same record upserts instead of duplicating. A
// non-zero incident_id is part of the key, so numbered incidents with equal
// field values stay distinct.
func generateID(inc Incident) string {
	input := fmt.Sprintf("%s|%s|%s|%d|%d|%d|%g|%g",
		inc.State, inc.City, inc.DisasterType, inc.Year, inc.Month,
		inc.Casualties, inc.EconomicLossCrores, inc.ResponseTimeHours)
	if inc.IncidentID != 0 {
		input += "|" + strconv.Itoa(inc.IncidentID)
	}
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	prefix := strings.ToLower(strings.ReplaceAll(inc.DisasterType, " ", "-"))
	if prefix == "" {
		return short
	}
	return prefix + "-" + short
}

// Raw renders the incident's source fields in the wire format read by
// ParseIncident.
func (inc Incident) Raw() RawIncidentRecord {
	return RawIncidentRecord{
		IncidentID:         strconv.Itoa(inc.IncidentID),
		State:              inc.State,
		City:               inc.City,
		DisasterType:       inc.DisasterType,
		Month:              strconv.Itoa(inc.Month),
		Year:               strconv.Itoa(inc.Year),
		Casualties:         strconv.Itoa(inc.Casualties),
		EconomicLossCrores: FormatNumber(inc.EconomicLossCrores),
		ResponseTimeHours:  FormatNumber(inc.ResponseTimeHours),
	}
}
