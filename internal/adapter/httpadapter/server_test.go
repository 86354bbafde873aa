package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchcryptid/disaster-risk-etl/internal/adapter/httpadapter"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockStats struct {
	summary  domain.Summary
	forecast []domain.ForecastRecord
	err      error
}

func (m *mockStats) Summary(_ context.Context) (domain.Summary, error) { return m.summary, m.err }

func (m *mockStats) Forecast(_ context.Context) ([]domain.ForecastRecord, error) {
	return m.forecast, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(readyErr error, stats httpadapter.StatsProvider) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, stats, discardLogger())
}

func get(t *testing.T, srv http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(nil, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		readyErr   error
		wantCode   int
		wantStatus string
	}{
		{"ready", nil, http.StatusOK, "ready"},
		{"not ready", fmt.Errorf("not ready yet"), http.StatusServiceUnavailable, "not ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(tt.readyErr, nil), "/readyz")
			assert.Equal(t, tt.wantCode, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body["status"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(nil, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSummaryEndpoint(t *testing.T) {
	incidents := domain.SampleIncidents(domain.DefaultScorer)
	stats := &mockStats{summary: domain.Summarize(incidents)}

	rec := get(t, newTestServer(nil, stats), "/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, 1, body.ByState["Gujarat"])
	assert.Equal(t, 1, body.ByDisasterType["Flood"])
}

func TestForecastEndpoint(t *testing.T) {
	stats := &mockStats{forecast: []domain.ForecastRecord{
		{State: "Kerala", Month: 6, Count: 2, ForecastRisk: 2},
		{State: "Kerala", Month: 7, Count: 4, ForecastRisk: 3},
	}}

	rec := get(t, newTestServer(nil, stats), "/forecast")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Window  int                     `json:"window"`
		Records []domain.ForecastRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.ForecastWindow, body.Window)
	assert.Equal(t, stats.forecast, body.Records)
}

func TestForecastEndpoint_EmptyIsArray(t *testing.T) {
	rec := get(t, newTestServer(nil, &mockStats{}), "/forecast")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"records":[]`)
}

func TestStatsEndpoints_Error(t *testing.T) {
	srv := newTestServer(nil, &mockStats{err: errors.New("database is locked")})

	for _, path := range []string{"/summary", "/forecast"} {
		rec := get(t, srv, path)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "database is locked", path)
	}
}

func TestStatsEndpoints_NotMountedWithoutProvider(t *testing.T) {
	srv := newTestServer(nil, nil)

	for _, path := range []string{"/summary", "/forecast"} {
		assert.Equal(t, http.StatusNotFound, get(t, srv, path).Code, path)
	}
}

func TestHandleMountsExtraRoute(t *testing.T) {
	srv := newTestServer(nil, nil)
	srv.Handle("GET /ws/incidents", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	assert.Equal(t, http.StatusTeapot, get(t, srv, "/ws/incidents").Code)
}
