package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
	"github.com/couchcryptid/disaster-risk-etl/internal/observability"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStore(t *testing.T, metrics *observability.Metrics) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "incidents.db")
	s, err := Open(context.Background(), path, "run-1", metrics, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func enriched(t *testing.T, n int) []domain.Incident {
	t.Helper()
	at := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)
	out := domain.NewGenerator(7, domain.DefaultScorer).Generate(n)
	for i := range out {
		out[i] = domain.EnrichIncident(out[i], domain.DefaultScorer)
		out[i].ProcessedAt = at
		out[i].Geo = domain.Geo{Lat: 19.076, Lon: 72.8777}
		out[i].GeoSource = domain.GeoSourceMapping
	}
	return out
}

func counterValue(t *testing.T, m *observability.Metrics, outcome string) float64 {
	t.Helper()
	var pb dto.Metric
	require.NoError(t, m.StoreWrites.WithLabelValues(outcome).Write(&pb))
	return pb.GetCounter().GetValue()
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	s, path := openTestStore(t, nil)

	var applied int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&applied))
	assert.Equal(t, len(migrations), applied)
	require.NoError(t, s.Close())

	reopened, err := Open(context.Background(), path, "run-2", nil, testLogger())
	require.NoError(t, err)
	defer reopened.Close()

	require.NoError(t, reopened.db.QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&applied))
	assert.Equal(t, len(migrations), applied)
	assert.NoError(t, reopened.CheckReadiness(context.Background()))
}

func TestLoadBatch_RoundTrip(t *testing.T) {
	s, _ := openTestStore(t, nil)
	want := enriched(t, 5)

	require.NoError(t, s.LoadBatch(context.Background(), want))

	got, err := s.Incidents(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].IncidentID, got[i].IncidentID)
		assert.Equal(t, want[i].State, got[i].State)
		assert.Equal(t, want[i].Month, got[i].Month)
		assert.Equal(t, want[i].Season, got[i].Season)
		assert.Equal(t, want[i].Severity, got[i].Severity)
		assert.InDelta(t, want[i].RiskScore, got[i].RiskScore, 1e-9)
		assert.Equal(t, want[i].Geo, got[i].Geo)
		assert.Equal(t, domain.GeoSourceMapping, got[i].GeoSource)
		assert.True(t, want[i].ProcessedAt.Equal(got[i].ProcessedAt))
	}

	limited, err := s.Incidents(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestLoadBatch_SkipsDuplicates(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	s, _ := openTestStore(t, metrics)
	batch := enriched(t, 4)

	require.NoError(t, s.LoadBatch(context.Background(), batch))
	require.NoError(t, s.LoadBatch(context.Background(), batch))

	sum, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Total)

	assert.Equal(t, float64(4), counterValue(t, metrics, "inserted"))
	assert.Equal(t, float64(4), counterValue(t, metrics, "duplicate"))
	assert.Zero(t, counterValue(t, metrics, "error"))
}

func TestLoadBatch_RejectsInvalidRowAtomically(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	s, _ := openTestStore(t, metrics)
	batch := enriched(t, 3)
	batch[2].Month = 13

	err := s.LoadBatch(context.Background(), batch)
	require.Error(t, err)

	got, err := s.Incidents(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got, "failed batch must roll back")
	assert.Equal(t, float64(3), counterValue(t, metrics, "error"))
}

func TestInsert_NumberedIncidentsWithEqualFields(t *testing.T) {
	s, _ := openTestStore(t, nil)
	ctx := context.Background()

	var batch []domain.Incident
	for _, id := range []string{"1", "2"} {
		inc, err := domain.ParseIncident(domain.RawIncidentRecord{
			IncidentID: id, State: "Gujarat", City: "Surat", DisasterType: "Flood",
			Month: "7", Year: "2021", Casualties: "2", EconomicLossCrores: "3", ResponseTimeHours: "5",
		})
		require.NoError(t, err)
		batch = append(batch, domain.EnrichIncident(inc, domain.DefaultScorer))
	}

	inserted, err := s.Insert(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	forecast, err := s.Forecast(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RollingForecast(domain.CountByStateMonth(batch), domain.ForecastWindow), forecast)

	inserted, err = s.Insert(ctx, batch)
	require.NoError(t, err)
	assert.Zero(t, inserted, "replayed incidents keep their IDs")
}

func TestLoadBatch_Empty(t *testing.T) {
	s, _ := openTestStore(t, nil)
	assert.NoError(t, s.LoadBatch(context.Background(), nil))
}

func TestSummary_MatchesInMemory(t *testing.T) {
	s, _ := openTestStore(t, nil)
	incidents := enriched(t, 60)
	require.NoError(t, s.LoadBatch(context.Background(), incidents))

	got, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Summarize(incidents), got)
}

func TestSummary_EmptyStore(t *testing.T) {
	s, _ := openTestStore(t, nil)

	got, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.NewSummary(), got)
}

func TestForecast_MatchesInMemory(t *testing.T) {
	s, _ := openTestStore(t, nil)
	incidents := enriched(t, 60)
	require.NoError(t, s.LoadBatch(context.Background(), incidents))

	counts, err := s.MonthlyCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.CountByStateMonth(incidents), counts)

	got, err := s.Forecast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RollingForecast(counts, domain.ForecastWindow), got)
}
