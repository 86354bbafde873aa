package batch

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
)

// CoordinateTable builds a city lookup from a mapping file with city,
// latitude and longitude columns.
func CoordinateTable(in *csvfile.Table, fallback domain.Geo) (*domain.CoordinateTable, error) {
	if err := in.Require(ColCity, ColLatitude, ColLongitude); err != nil {
		return nil, err
	}

	coords := make(map[string]domain.Geo, in.Len())
	for i, row := range in.Rows {
		city := in.Get(row, ColCity)
		lat, latOK := domain.ParseNumber(in.Get(row, ColLatitude))
		lon, lonOK := domain.ParseNumber(in.Get(row, ColLongitude))
		if city == "" || !latOK || !lonOK {
			return nil, fmt.Errorf("coordinates line %d: invalid entry for %q", i+2, city)
		}
		coords[city] = domain.Geo{Lat: lat, Lon: lon}
	}
	return domain.NewCoordinateTable(coords, fallback), nil
}

// LoadCoordinateTable reads a mapping file into a lookup table. An empty
// path yields the built-in city mapping.
func LoadCoordinateTable(path string) (*domain.CoordinateTable, error) {
	if path == "" {
		return domain.NewCoordinateTable(domain.DefaultCityCoordinates, domain.FallbackGeo), nil
	}
	in, err := csvfile.ReadFile(path, csvfile.WithTrimHeader())
	if err != nil {
		return nil, err
	}
	table, err := CoordinateTable(in, domain.FallbackGeo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// CoordinateStats counts rows by the source of their coordinates.
type CoordinateStats map[string]int

// AddCoordinates appends latitude and longitude to every row of in. Existing
// coordinate columns are replaced. Cities are resolved once each.
func AddCoordinates(ctx context.Context, in *csvfile.Table, table *domain.CoordinateTable, geocoder domain.Geocoder, logger *slog.Logger) (*csvfile.Table, CoordinateStats, error) {
	if err := in.Require(ColCity); err != nil {
		return nil, nil, err
	}

	header := slices.DeleteFunc(slices.Clone(in.Header), func(h string) bool {
		return h == ColLatitude || h == ColLongitude
	})
	out := csvfile.NewTable(append(header, ColLatitude, ColLongitude)...)
	stats := CoordinateStats{}

	type place struct{ city, state string }
	resolved := make(map[place]domain.Incident)
	for _, row := range in.Rows {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		p := place{city: in.Get(row, ColCity), state: in.Get(row, ColState)}
		inc, ok := resolved[p]
		if !ok {
			inc = domain.EnrichWithCoordinates(ctx, domain.Incident{City: p.city, State: p.state}, table, geocoder, logger)
			resolved[p] = inc
		}
		stats[inc.GeoSource]++

		values := make([]string, 0, len(header)+2)
		for _, h := range header {
			values = append(values, in.Get(row, h))
		}
		values = append(values, domain.FormatNumber(inc.Geo.Lat), domain.FormatNumber(inc.Geo.Lon))
		out.Append(values...)
	}
	return out, stats, nil
}
