package domain

import (
	"context"
	"strings"
)

// FallbackGeo is the geographic centre of India, used for cities that no
// mapping or geocoder can place.
var FallbackGeo = Geo{Lat: 20.5937, Lon: 78.9629}

// DefaultCityCoordinates covers the major cities present in the datasets.
// Deployments inject their own mapping through a coordinates file.
var DefaultCityCoordinates = map[string]Geo{
	"Pune":      {Lat: 18.5204, Lon: 73.8567},
	"Mumbai":    {Lat: 19.0760, Lon: 72.8777},
	"Delhi":     {Lat: 28.6139, Lon: 77.2090},
	"Chennai":   {Lat: 13.0827, Lon: 80.2707},
	"Bangalore": {Lat: 12.9716, Lon: 77.5946},
	"Hyderabad": {Lat: 17.3850, Lon: 78.4867},
	"Kolkata":   {Lat: 22.5726, Lon: 88.3639},
	"Ahmedabad": {Lat: 23.0225, Lon: 72.5714},
	"Jaipur":    {Lat: 26.9124, Lon: 75.7873},
}

// CoordinateTable is an injected city → coordinate mapping with a fallback
// for unknown cities. Lookups are case-insensitive.
type CoordinateTable struct {
	coords   map[string]Geo
	fallback Geo
}

// NewCoordinateTable copies coords into a lookup table.
func NewCoordinateTable(coords map[string]Geo, fallback Geo) *CoordinateTable {
	t := &CoordinateTable{
		coords:   make(map[string]Geo, len(coords)),
		fallback: fallback,
	}
	for city, g := range coords {
		t.coords[normalizeCity(city)] = g
	}
	return t
}

// Lookup returns the mapped coordinates for a city.
func (t *CoordinateTable) Lookup(city string) (Geo, bool) {
	g, ok := t.coords[normalizeCity(city)]
	return g, ok
}

// Fallback returns the coordinate used for unmapped cities.
func (t *CoordinateTable) Fallback() Geo {
	return t.fallback
}

// Len returns the number of mapped cities.
func (t *CoordinateTable) Len() int {
	return len(t.coords)
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves cities the coordinate table does not know.
type Geocoder interface {
	// ForwardGeocode converts a city and state to coordinates.
	ForwardGeocode(ctx context.Context, city, state string) (GeocodingResult, error)
}
