package sacamantecas

import (
	"context"
	"time"
)

// Journal entry statuses.
const (
	JournalOK     = "ok"     // metadata extracted and written
	JournalEmpty  = "empty"  // page retrieved but no metadata found
	JournalFailed = "failed" // the item failed
)

// Run summarizes one execution of the skim pipeline.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Skimmed    int       `json:"skimmed"`
	Failed     int       `json:"failed"`
}

// JournalEntry records the outcome of skimming one URI.
type JournalEntry struct {
	RunID       string    `json:"runId"`
	URI         string    `json:"uri"`
	Profile     string    `json:"profile"`
	Status      string    `json:"status"`
	Error       string    `json:"error"`
	Fingerprint string    `json:"fingerprint"`
	Metadata    *Record   `json:"metadata"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Journal persists skim outcomes across runs. It stores outcomes and
// extracted records only, never page content.
type Journal interface {
	// BeginRun opens a new run with its ID and start time set.
	BeginRun(ctx context.Context) (*Run, error)

	// EndRun stores a run's final counters and finish time.
	// Returns ENOTFOUND if the run does not exist.
	EndRun(ctx context.Context, run *Run) error

	// Record stores the outcome of one skimmed URI.
	Record(ctx context.Context, entry *JournalEntry) error

	// Succeeded reports whether any prior entry for uri has status ok.
	Succeeded(ctx context.Context, uri string) (bool, error)

	// Runs returns the most recent runs, newest first.
	Runs(ctx context.Context, limit int) ([]*Run, error)

	Close() error
}
