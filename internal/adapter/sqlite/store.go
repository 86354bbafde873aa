// Package sqlite persists scored incidents in a local SQLite database and
// answers the analytics queries served over HTTP.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
	"github.com/couchcryptid/disaster-risk-etl/internal/observability"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// Store is an incident sink backed by SQLite via modernc.org/sqlite.
// It implements pipeline.BatchLoader.
type Store struct {
	db      *sql.DB
	runID   string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Open opens (or creates) the database at path, applies pragmas and runs
// pending migrations. metrics may be nil.
func Open(ctx context.Context, path, runID string, metrics *observability.Metrics, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// SQLite performs best with a single write connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}

	// modernc.org/sqlite takes pragmas as statements, not DSN params.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	s := &Store{db: db, runID: runID, metrics: metrics, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// tx executes fn within a database transaction. The transaction is
// committed if fn returns nil, rolled back otherwise.
func (s *Store) tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}

const insertIncident = `
INSERT INTO incidents (
	id, incident_id, state, city, disaster_type, month, year,
	casualties, economic_loss_crores, response_time_hours,
	season, risk_score, severity, latitude, longitude, geo_source,
	run_id, processed_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING`

// LoadBatch inserts incidents in one transaction. Incidents whose ID is
// already stored are skipped, so replayed batches do not duplicate rows.
func (s *Store) LoadBatch(ctx context.Context, incidents []domain.Incident) error {
	_, err := s.Insert(ctx, incidents)
	return err
}

// Insert writes incidents in one transaction and reports how many were new.
// Incidents whose ID is already stored are skipped.
func (s *Store) Insert(ctx context.Context, incidents []domain.Incident) (int, error) {
	if len(incidents) == 0 {
		return 0, nil
	}

	var inserted int
	err := s.tx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertIncident)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i := range incidents {
			inc := &incidents[i]
			res, err := stmt.ExecContext(ctx,
				inc.ID, nullInt(inc.IncidentID), inc.State, inc.City, inc.DisasterType, inc.Month, inc.Year,
				inc.Casualties, inc.EconomicLossCrores, inc.ResponseTimeHours,
				string(inc.Season), inc.RiskScore, string(inc.Severity),
				inc.Geo.Lat, inc.Geo.Lon, inc.GeoSource,
				s.runID, inc.ProcessedAt.UTC().Format(time.RFC3339Nano),
			)
			if err != nil {
				return fmt.Errorf("insert incident %s: %w", inc.ID, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		s.countWrites("error", len(incidents))
		return 0, err
	}

	s.countWrites("inserted", inserted)
	s.countWrites("duplicate", len(incidents)-inserted)
	s.logger.Debug("stored batch", "inserted", inserted, "duplicates", len(incidents)-inserted)
	return inserted, nil
}

func (s *Store) countWrites(outcome string, n int) {
	if s.metrics == nil || n == 0 {
		return
	}
	s.metrics.StoreWrites.WithLabelValues(outcome).Add(float64(n))
}

// Summary counts stored incidents by severity, state and disaster type.
func (s *Store) Summary(ctx context.Context) (domain.Summary, error) {
	sum := domain.NewSummary()

	groups := []struct {
		column string
		dst    map[string]int
	}{
		{"severity", sum.BySeverity},
		{"state", sum.ByState},
		{"disaster_type", sum.ByDisasterType},
	}
	for _, g := range groups {
		// Column names come from the fixed list above.
		rows, err := s.db.QueryContext(ctx,
			"SELECT "+g.column+", COUNT(*) FROM incidents GROUP BY "+g.column)
		if err != nil {
			return domain.Summary{}, fmt.Errorf("summarize by %s: %w", g.column, err)
		}
		for rows.Next() {
			var key string
			var n int
			if err := rows.Scan(&key, &n); err != nil {
				rows.Close()
				return domain.Summary{}, fmt.Errorf("scan %s summary: %w", g.column, err)
			}
			g.dst[key] = n
		}
		if err := rows.Close(); err != nil {
			return domain.Summary{}, err
		}
		if err := rows.Err(); err != nil {
			return domain.Summary{}, err
		}
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM incidents").Scan(&sum.Total); err != nil {
		return domain.Summary{}, fmt.Errorf("count incidents: %w", err)
	}
	return sum, nil
}

// MonthlyCounts returns the number of stored incidents per (state, month),
// ordered by state then month.
func (s *Store) MonthlyCounts(ctx context.Context) ([]domain.StateMonthCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT state, month, COUNT(*)
		FROM incidents
		GROUP BY state, month
		ORDER BY state, month`)
	if err != nil {
		return nil, fmt.Errorf("query monthly counts: %w", err)
	}
	defer rows.Close()

	var out []domain.StateMonthCount
	for rows.Next() {
		var c domain.StateMonthCount
		if err := rows.Scan(&c.State, &c.Month, &c.Count); err != nil {
			return nil, fmt.Errorf("scan monthly count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Forecast computes the rolling risk forecast over the stored incidents.
func (s *Store) Forecast(ctx context.Context) ([]domain.ForecastRecord, error) {
	counts, err := s.MonthlyCounts(ctx)
	if err != nil {
		return nil, err
	}
	return domain.RollingForecast(counts, domain.ForecastWindow), nil
}

// Incidents returns stored incidents in insertion order, at most limit rows
// (all rows when limit <= 0).
func (s *Store) Incidents(ctx context.Context, limit int) ([]domain.Incident, error) {
	q := `
		SELECT id, COALESCE(incident_id, 0), state, city, disaster_type, month, year,
		       casualties, economic_loss_crores, response_time_hours,
		       season, risk_score, severity, latitude, longitude, geo_source, processed_at
		FROM incidents
		ORDER BY rowid`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	var out []domain.Incident
	for rows.Next() {
		var inc domain.Incident
		var season, severity, processedAt string
		if err := rows.Scan(
			&inc.ID, &inc.IncidentID, &inc.State, &inc.City, &inc.DisasterType, &inc.Month, &inc.Year,
			&inc.Casualties, &inc.EconomicLossCrores, &inc.ResponseTimeHours,
			&season, &inc.RiskScore, &severity, &inc.Geo.Lat, &inc.Geo.Lon, &inc.GeoSource, &processedAt,
		); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		inc.Season = domain.Season(season)
		inc.Severity = domain.Severity(severity)
		if inc.ProcessedAt, err = time.Parse(time.RFC3339Nano, processedAt); err != nil {
			return nil, fmt.Errorf("incident %s processed_at: %w", inc.ID, err)
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
