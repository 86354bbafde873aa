package observability

import (
	"log/slog"

	"github.com/couchcryptid/disaster-risk-etl/internal/config"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// NewLogger creates the service logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
}

// NewCommandLogger creates the logger for the batch commands, which do not
// load the service configuration. Output defaults to text.
func NewCommandLogger() *slog.Logger {
	return sharedobs.NewLogger(
		sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
	)
}
