package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one ordered schema change.
type migration struct {
	version     int
	description string
	statements  []string
}

// migrations must stay in ascending version order; applied versions are
// recorded in _migrations and never rerun.
var migrations = []migration{
	{
		version:     1,
		description: "create incidents",
		statements: []string{`
			CREATE TABLE incidents (
				id                   TEXT    PRIMARY KEY,
				incident_id          INTEGER,
				state                TEXT    NOT NULL,
				city                 TEXT    NOT NULL,
				disaster_type        TEXT    NOT NULL,
				month                INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
				year                 INTEGER NOT NULL,
				casualties           INTEGER NOT NULL CHECK (casualties >= 0),
				economic_loss_crores REAL    NOT NULL CHECK (economic_loss_crores >= 0),
				response_time_hours  REAL    NOT NULL CHECK (response_time_hours > 0),
				season               TEXT    NOT NULL,
				risk_score           REAL    NOT NULL,
				severity             TEXT    NOT NULL,
				latitude             REAL    NOT NULL DEFAULT 0,
				longitude            REAL    NOT NULL DEFAULT 0,
				geo_source           TEXT    NOT NULL DEFAULT '',
				run_id               TEXT    NOT NULL DEFAULT '',
				processed_at         TEXT    NOT NULL
			)`,
			`CREATE INDEX idx_incidents_state_month ON incidents (state, month)`,
		},
	},
	{
		version:     2,
		description: "index severity and disaster type",
		statements: []string{
			`CREATE INDEX idx_incidents_severity ON incidents (severity)`,
			`CREATE INDEX idx_incidents_disaster_type ON incidents (disaster_type)`,
		},
	},
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _migrations (
			version     INTEGER  PRIMARY KEY,
			description TEXT     NOT NULL,
			applied_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM _migrations WHERE version = ?", m.version,
		).Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if count > 0 {
			continue
		}

		err := s.tx(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO _migrations (version, description) VALUES (?, ?)",
				m.version, m.description)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		s.logger.Debug("applied migration", "version", m.version, "description", m.description)
	}
	return nil
}
