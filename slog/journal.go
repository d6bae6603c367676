package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/DervishD/sacamantecas"
)

// Ensure LoggingJournal implements sacamantecas.Journal.
var _ sacamantecas.Journal = (*LoggingJournal)(nil)

// LoggingJournal wraps a Journal with logging. The skimmer drops journal
// write errors rather than failing the batch, so this decorator is where
// they surface.
type LoggingJournal struct {
	next   sacamantecas.Journal
	logger *slog.Logger
}

// NewLoggingJournal creates a new LoggingJournal.
func NewLoggingJournal(next sacamantecas.Journal, logger *slog.Logger) *LoggingJournal {
	return &LoggingJournal{next: next, logger: logger}
}

// BeginRun delegates to the wrapped journal and logs the new run.
func (j *LoggingJournal) BeginRun(ctx context.Context) (run *sacamantecas.Run, err error) {
	defer func(begin time.Time) {
		var id string
		if run != nil {
			id = run.ID
		}
		j.logger.Info("journal begin run",
			"run", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return j.next.BeginRun(ctx)
}

// EndRun delegates to the wrapped journal and logs the run summary.
func (j *LoggingJournal) EndRun(ctx context.Context, run *sacamantecas.Run) (err error) {
	defer func(begin time.Time) {
		j.logger.Info("journal end run",
			"run", run.ID,
			"skimmed", run.Skimmed,
			"failed", run.Failed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return j.next.EndRun(ctx, run)
}

// Record delegates to the wrapped journal and logs the stored outcome.
func (j *LoggingJournal) Record(ctx context.Context, entry *sacamantecas.JournalEntry) (err error) {
	defer func(begin time.Time) {
		j.logger.Info("journal record",
			"uri", entry.URI,
			"status", entry.Status,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return j.next.Record(ctx, entry)
}

// Succeeded delegates to the wrapped journal.
func (j *LoggingJournal) Succeeded(ctx context.Context, uri string) (bool, error) {
	return j.next.Succeeded(ctx, uri)
}

// Runs delegates to the wrapped journal.
func (j *LoggingJournal) Runs(ctx context.Context, limit int) ([]*sacamantecas.Run, error) {
	return j.next.Runs(ctx, limit)
}

// Close delegates to the wrapped journal.
func (j *LoggingJournal) Close() error {
	return j.next.Close()
}
