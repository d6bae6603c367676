package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DervishD/sacamantecas"
)

// Compile-time interface verification.
var _ sacamantecas.Journal = (*Journal)(nil)

// Journal implements sacamantecas.Journal using SQLite. It owns the
// underlying database connection and closes it with the journal.
type Journal struct {
	db *DB
}

// NewJournal creates a new Journal on top of db.
func NewJournal(db *DB) *Journal {
	return &Journal{db: db}
}

// BeginRun opens a new run with a generated ID and start time.
func (j *Journal) BeginRun(ctx context.Context) (*sacamantecas.Run, error) {
	run := &sacamantecas.Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}

	// Nanosecond precision keeps runs begun within the same second in
	// chronological order, since Runs sorts by the stored text.
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at)
		VALUES (?, ?)
	`, run.ID, run.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}

	return run, nil
}

// EndRun stores a run's final counters and finish time.
func (j *Journal) EndRun(ctx context.Context, run *sacamantecas.Run) error {
	result, err := j.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, skimmed = ?, failed = ?
		WHERE id = ?
	`, run.FinishedAt.UTC().Format(time.RFC3339Nano), run.Skimmed, run.Failed, run.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sacamantecas.Errorf(sacamantecas.ENOTFOUND, "run not found")
	}

	return nil
}

// Record stores the outcome of one skimmed URI.
func (j *Journal) Record(ctx context.Context, entry *sacamantecas.JournalEntry) error {
	if entry.RunID == "" {
		return sacamantecas.Errorf(sacamantecas.EINVALID, "journal entry requires a run")
	}
	if entry.URI == "" {
		return sacamantecas.Errorf(sacamantecas.EINVALID, "journal entry requires a uri")
	}

	entry.CreatedAt = time.Now().UTC()

	var metadata string
	if entry.Metadata != nil && entry.Metadata.Len() > 0 {
		data, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		metadata = string(data)
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO entries (run_id, uri, profile, status, error, fingerprint, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.RunID, entry.URI, entry.Profile, entry.Status, entry.Error,
		entry.Fingerprint, metadata, entry.CreatedAt.Format(time.RFC3339Nano))

	return err
}

// Succeeded reports whether any prior entry for uri has status ok.
func (j *Journal) Succeeded(ctx context.Context, uri string) (bool, error) {
	var count int
	err := j.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM entries
		WHERE uri = ? AND status = ?
	`, uri, sacamantecas.JournalOK).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Runs returns the most recent runs, newest first.
func (j *Journal) Runs(ctx context.Context, limit int) ([]*sacamantecas.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT id, started_at, finished_at, skimmed, failed
		FROM runs
		ORDER BY started_at DESC
	`)
	appendPagination(&query, &args, limit, 0)

	rows, err := j.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*sacamantecas.Run
	for rows.Next() {
		var run sacamantecas.Run
		var startedAt, finishedAt string

		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.Skimmed, &run.Failed); err != nil {
			return nil, err
		}

		run.StartedAt, err = parseRFC3339(startedAt, "started_at")
		if err != nil {
			return nil, err
		}
		// Unfinished runs have no finish time yet.
		if finishedAt != "" {
			run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at")
			if err != nil {
				return nil, err
			}
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// Close closes the journal and its database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// parseRFC3339 parses a stored timestamp, naming the field on failure.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
