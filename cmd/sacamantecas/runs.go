package main

import (
	"fmt"
	"time"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	runs, err := deps.Journal.Runs(deps.Ctx, c.Limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		duration := "unfinished"
		if !run.FinishedAt.IsZero() {
			duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  skimmed %d  failed %d  %s\n",
			run.ID, run.StartedAt.Format(time.RFC3339), run.Skimmed, run.Failed, duration)
	}
	return nil
}
