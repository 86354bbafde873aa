package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock geocoder ---

type mockGeocoder struct {
	result GeocodingResult
	err    error
	calls  int
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, _, _ string) (GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultTable() *CoordinateTable {
	return NewCoordinateTable(DefaultCityCoordinates, FallbackGeo)
}

// --- tests ---

func TestCoordinateTable_Lookup(t *testing.T) {
	table := defaultTable()

	g, ok := table.Lookup("Pune")
	assert.True(t, ok)
	assert.Equal(t, Geo{Lat: 18.5204, Lon: 73.8567}, g)

	g, ok = table.Lookup("  mumbai ")
	assert.True(t, ok, "lookups ignore case and surrounding space")
	assert.Equal(t, 19.0760, g.Lat)

	_, ok = table.Lookup("Nagpur")
	assert.False(t, ok)

	assert.Equal(t, FallbackGeo, table.Fallback())
	assert.Equal(t, len(DefaultCityCoordinates), table.Len())
}

func TestEnrichWithCoordinates_Mapped(t *testing.T) {
	geo := &mockGeocoder{}
	inc := EnrichWithCoordinates(context.Background(), Incident{City: "Jaipur"}, defaultTable(), geo, discardLogger())

	assert.Equal(t, Geo{Lat: 26.9124, Lon: 75.7873}, inc.Geo)
	assert.Equal(t, GeoSourceMapping, inc.GeoSource)
	assert.Zero(t, geo.calls, "mapped cities must not hit the geocoder")
}

func TestEnrichWithCoordinates_NilGeocoderFallsBack(t *testing.T) {
	inc := EnrichWithCoordinates(context.Background(), Incident{City: "Nagpur"}, defaultTable(), nil, discardLogger())

	assert.Equal(t, FallbackGeo, inc.Geo)
	assert.Equal(t, GeoSourceFallback, inc.GeoSource)
}

func TestEnrichWithCoordinates_Geocoded(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{Lat: 21.1458, Lon: 79.0882, PlaceName: "Nagpur"}}
	inc := EnrichWithCoordinates(context.Background(), Incident{City: "Nagpur", State: "Maharashtra"}, defaultTable(), geo, discardLogger())

	assert.Equal(t, Geo{Lat: 21.1458, Lon: 79.0882}, inc.Geo)
	assert.Equal(t, GeoSourceMapbox, inc.GeoSource)
	assert.Equal(t, 1, geo.calls)
}

func TestEnrichWithCoordinates_GeocoderError(t *testing.T) {
	geo := &mockGeocoder{err: errors.New("timeout")}
	inc := EnrichWithCoordinates(context.Background(), Incident{City: "Nagpur"}, defaultTable(), geo, discardLogger())

	assert.Equal(t, FallbackGeo, inc.Geo)
	assert.Equal(t, GeoSourceFallback, inc.GeoSource)
}

func TestEnrichWithCoordinates_GeocoderEmpty(t *testing.T) {
	geo := &mockGeocoder{}
	custom := NewCoordinateTable(nil, Geo{Lat: 1, Lon: 2})
	inc := EnrichWithCoordinates(context.Background(), Incident{City: "Nowhere"}, custom, geo, discardLogger())

	assert.Equal(t, Geo{Lat: 1, Lon: 2}, inc.Geo)
	assert.Equal(t, GeoSourceFallback, inc.GeoSource)
}
