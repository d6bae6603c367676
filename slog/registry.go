package slog

import (
	"log/slog"
	"time"

	"github.com/DervishD/sacamantecas"
)

// Ensure LoggingRegistry implements sacamantecas.ProfileRegistry.
var _ sacamantecas.ProfileRegistry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps a ProfileRegistry with logging of match decisions.
type LoggingRegistry struct {
	next   sacamantecas.ProfileRegistry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next sacamantecas.ProfileRegistry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// Match delegates to the wrapped registry and logs which profile won.
func (r *LoggingRegistry) Match(uri string) (profile *sacamantecas.Profile, err error) {
	defer func(begin time.Time) {
		name := "(none)"
		if profile != nil {
			name = profile.Name
		}
		r.logger.Info("profile match",
			"uri", uri,
			"profile", name,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Match(uri)
}
