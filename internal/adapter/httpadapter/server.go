// Package httpadapter serves the service's operational and analytics
// endpoints.
package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider answers the analytics queries behind /summary and /forecast.
type StatsProvider interface {
	Summary(ctx context.Context) (domain.Summary, error)
	Forecast(ctx context.Context) ([]domain.ForecastRecord, error)
}

// Server exposes health, readiness, metrics and analytics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	stats      StatsProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz and /metrics
// routes. When stats is non-nil, /summary and /forecast are served too.
func NewServer(addr string, ready sharedobs.ReadinessChecker, stats StatsProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:    mux,
		stats:  stats,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	if stats != nil {
		mux.HandleFunc("GET /summary", s.handleSummary)
		mux.HandleFunc("GET /forecast", s.handleForecast)
	}

	return s
}

// Handle mounts an extra handler, such as the live incident feed.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.stats.Summary(r.Context())
	if err != nil {
		s.writeError(w, "summary", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, sum)
}

type forecastResponse struct {
	Window  int                     `json:"window"`
	Records []domain.ForecastRecord `json:"records"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	records, err := s.stats.Forecast(r.Context())
	if err != nil {
		s.writeError(w, "forecast", err)
		return
	}
	if records == nil {
		records = []domain.ForecastRecord{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, forecastResponse{
		Window:  domain.ForecastWindow,
		Records: records,
	})
}

func (s *Server) writeError(w http.ResponseWriter, query string, err error) {
	s.logger.Error("stats query failed", "query", query, "error", err)
	sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": query + " unavailable",
	})
}
