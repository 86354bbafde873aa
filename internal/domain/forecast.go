package domain

import (
	"cmp"
	"slices"
)

// ForecastWindow is the number of periods averaged by the risk forecast.
const ForecastWindow = 3

// StateMonthCount is the number of incidents recorded for a state in a month.
type StateMonthCount struct {
	State string
	Month int
	Count int
}

// CountByStateMonth groups incidents by (state, month) and counts them.
// The result is ordered by state, then month.
func CountByStateMonth(incidents []Incident) []StateMonthCount {
	type key struct {
		state string
		month int
	}
	counts := make(map[key]int)
	for i := range incidents {
		counts[key{incidents[i].State, incidents[i].Month}]++
	}

	out := make([]StateMonthCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, StateMonthCount{State: k.state, Month: k.month, Count: n})
	}
	slices.SortFunc(out, func(a, b StateMonthCount) int {
		if c := cmp.Compare(a.State, b.State); c != 0 {
			return c
		}
		return cmp.Compare(a.Month, b.Month)
	})
	return out
}

// RollingForecast computes, for each state, the trailing mean of the current
// and up to window-1 preceding monthly counts. Fewer available periods use
// whatever is there. Input rows may arrive in any order; the output is
// ordered by state, then month.
func RollingForecast(counts []StateMonthCount, window int) []ForecastRecord {
	sorted := slices.Clone(counts)
	slices.SortStableFunc(sorted, func(a, b StateMonthCount) int {
		if c := cmp.Compare(a.State, b.State); c != 0 {
			return c
		}
		return cmp.Compare(a.Month, b.Month)
	})

	out := make([]ForecastRecord, 0, len(sorted))
	for start := 0; start < len(sorted); {
		end := start
		for end < len(sorted) && sorted[end].State == sorted[start].State {
			end++
		}

		group := sorted[start:end]
		values := make([]float64, len(group))
		for i, c := range group {
			values[i] = float64(c.Count)
		}
		means := RollingMean(values, window)
		for i, c := range group {
			out = append(out, ForecastRecord{
				State:        c.State,
				Month:        c.Month,
				Count:        c.Count,
				ForecastRisk: means[i],
			})
		}
		start = end
	}
	return out
}

// RollingMean returns the trailing mean of each value and up to window-1
// values before it. A window below 1 is treated as 1.
func RollingMean(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := min(i+1, window)
		out[i] = sum / float64(n)
	}
	return out
}
