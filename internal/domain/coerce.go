package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses s as a finite float64. Empty strings, "NaN" and any
// unparsable text report ok=false, the equivalent of coercing to NaN.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseNumberOrZero parses s as a float64, returning 0 on failure.
func ParseNumberOrZero(s string) float64 {
	v, ok := ParseNumber(s)
	if !ok {
		return 0
	}
	return v
}

// ParseWhole parses s as a whole number. Values written with a fractional
// part of zero ("7.0") are accepted; fractions and values outside the int32
// range report ok=false.
func ParseWhole(s string) (int, bool) {
	v, ok := ParseNumber(s)
	if !ok || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

// TextOrDefault returns the trimmed text, or def when it is empty.
func TextOrDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// FormatNumber renders a float with the shortest representation that
// round-trips, e.g. 21.6 rather than 21.600000.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
