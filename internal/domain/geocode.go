package domain

import (
	"context"
	"log/slog"
)

// EnrichWithCoordinates attaches coordinates to an incident. The injected
// table is consulted first, then the geocoder (when non-nil), and finally the
// table's fallback coordinate. Geocoder failures degrade to the fallback.
func EnrichWithCoordinates(ctx context.Context, inc Incident, table *CoordinateTable, geocoder Geocoder, logger *slog.Logger) Incident {
	if g, ok := table.Lookup(inc.City); ok {
		inc.Geo = g
		inc.GeoSource = GeoSourceMapping
		return inc
	}

	if geocoder != nil && inc.City != "" {
		result, err := geocoder.ForwardGeocode(ctx, inc.City, inc.State)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"incident_id", inc.ID,
				"city", inc.City,
				"state", inc.State,
				"error", err,
			)
		} else if result.Lat != 0 || result.Lon != 0 {
			inc.Geo = Geo{Lat: result.Lat, Lon: result.Lon}
			inc.GeoSource = GeoSourceMapbox
			return inc
		}
	}

	inc.Geo = table.Fallback()
	inc.GeoSource = GeoSourceFallback
	return inc
}
