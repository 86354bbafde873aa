package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
)

// IncidentTransformer implements Transformer using the domain scoring and
// coordinate enrichment functions.
type IncidentTransformer struct {
	scorer   domain.Scorer
	coords   *domain.CoordinateTable
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates an IncidentTransformer. Pass a nil geocoder to
// resolve unmapped cities to the table's fallback coordinate.
func NewTransformer(scorer domain.Scorer, coords *domain.CoordinateTable, geocoder domain.Geocoder, logger *slog.Logger) *IncidentTransformer {
	return &IncidentTransformer{
		scorer:   scorer,
		coords:   coords,
		geocoder: geocoder,
		logger:   logger,
	}
}

func (t *IncidentTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Incident, error) {
	inc, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.Incident{}, err
	}

	inc = domain.EnrichIncident(inc, t.scorer)
	inc = domain.EnrichWithCoordinates(ctx, inc, t.coords, t.geocoder, t.logger)

	return inc, nil
}
