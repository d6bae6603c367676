// Package skim provides metadata skimming orchestration.
// It coordinates profile matching, page retrieval, extraction, and
// delivery of the results to a sink and the journal.
package skim

import (
	"context"
	"net/url"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DervishD/sacamantecas"
	"github.com/DervishD/sacamantecas/bloom"
)

// Batch deduplication sizing.
const (
	// expectedBatchURIs sizes the Bloom filter used to drop duplicates.
	expectedBatchURIs = 10000
	// duplicateFalsePositiveRate is the acceptable false positive rate
	// for duplicate detection.
	duplicateFalsePositiveRate = 0.01
)

// Skimmer orchestrates the skimming of library catalogue items.
type Skimmer struct {
	Profiles    sacamantecas.ProfileRegistry
	Retriever   sacamantecas.Retriever
	Extractors  sacamantecas.ExtractorRegistry
	Journal     sacamantecas.Journal       // optional
	Limiter     sacamantecas.DomainLimiter // optional
	Concurrency int
	Resume      bool
}

// Result holds the outcome of a batch.
type Result struct {
	Skimmed  int // items whose page yielded metadata
	Empty    int // items whose page yielded none
	Skipped  int // duplicates and, when resuming, already journaled items
	Failed   int
	Bytes    int // decoded page bytes processed
	Failures []ItemFailure
}

// ItemFailure pairs a failed item with its error.
type ItemFailure struct {
	Item sacamantecas.Item
	Err  error
}

// ProgressEvent reports progress during a batch.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URI       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressEmpty
	ProgressSkipped
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress.
type ProgressFunc func(event ProgressEvent)

// skimResult holds the outcome of processing a single item.
type skimResult struct {
	position    int
	item        sacamantecas.Item
	profile     string
	record      *sacamantecas.Record
	fingerprint string
	bytes       int
	err         error
}

// Skim processes a single URI: match a profile, retrieve the page and
// extract its metadata. Errors from the stages propagate verbatim. An
// empty record is a valid outcome, not an error.
func (s *Skimmer) Skim(ctx context.Context, uri string) (*sacamantecas.Record, error) {
	res := s.processItem(ctx, 0, sacamantecas.Item{URI: uri})
	if res.err != nil {
		return nil, res.err
	}
	return res.record, nil
}

// SkimBatch processes items concurrently and writes the results to sink
// in input order. Item failures do not stop the batch: they are counted
// and collected in the result. The progress callback, if provided,
// receives events as skimming proceeds.
func (s *Skimmer) SkimBatch(ctx context.Context, items []sacamantecas.Item, sink sacamantecas.Sink, progress ProgressFunc) (*Result, error) {
	result := &Result{}
	if len(items) == 0 {
		return result, nil
	}

	var run *sacamantecas.Run
	if s.Journal != nil {
		r, err := s.Journal.BeginRun(ctx)
		if err != nil {
			return nil, err
		}
		run = r
	}

	total := len(items)
	var completed atomic.Int64

	if progress != nil {
		progress(ProgressEvent{
			Type:  ProgressStarted,
			Total: total,
		})
	}

	// Drop duplicate URIs and, when resuming, items that already
	// succeeded in a previous run.
	seen := bloom.NewFilter(expectedBatchURIs, duplicateFalsePositiveRate)
	pending := make([]sacamantecas.Item, 0, len(items))
	for _, item := range items {
		skip := seen.Seen(item.URI)
		if !skip && s.Resume && s.Journal != nil {
			done, err := s.Journal.Succeeded(ctx, item.URI)
			skip = err == nil && done
		}
		if !skip {
			pending = append(pending, item)
			continue
		}
		result.Skipped++
		completed.Add(1)
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressSkipped,
				Completed: int(completed.Load()),
				Total:     total,
				URI:       item.URI,
			})
		}
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	resultCh := make(chan skimResult, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, item := range pending {
			g.Go(func() error {
				resultCh <- s.processItem(gctx, i, item)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Collect results in input order.
	results := make([]skimResult, len(pending))
	for res := range resultCh {
		completed.Add(1)
		results[res.position] = res

		if progress == nil {
			continue
		}
		event := ProgressEvent{
			Completed: int(completed.Load()),
			Total:     total,
			URI:       res.item.URI,
		}
		switch {
		case res.err != nil:
			event.Type = ProgressFailed
			event.Error = res.err
		case res.record.Len() == 0:
			event.Type = ProgressEmpty
		default:
			event.Type = ProgressCompleted
		}
		progress(event)
	}

	// Deliver outcomes sequentially: sinks are not safe for concurrent
	// writes and text sinks depend on input order.
	for i := range results {
		res := &results[i]

		if res.err != nil {
			result.Failed++
			result.Failures = append(result.Failures, ItemFailure{Item: res.item, Err: res.err})
			s.journal(ctx, run, res, sacamantecas.JournalFailed)
			continue
		}

		result.Bytes += res.bytes

		if sink != nil {
			if err := sink.Write(res.item, res.record); err != nil {
				res.err = err
				result.Failed++
				result.Failures = append(result.Failures, ItemFailure{Item: res.item, Err: err})
				s.journal(ctx, run, res, sacamantecas.JournalFailed)
				continue
			}
		}

		if res.record.Len() == 0 {
			result.Empty++
			s.journal(ctx, run, res, sacamantecas.JournalEmpty)
			continue
		}

		result.Skimmed++
		s.journal(ctx, run, res, sacamantecas.JournalOK)
	}

	if s.Journal != nil {
		run.Skimmed = result.Skimmed
		run.Failed = result.Failed
		run.FinishedAt = time.Now()
		_ = s.Journal.EndRun(ctx, run)
	}

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Completed: total,
			Total:     total,
		})
	}

	return result, nil
}

// processItem runs the profile match, retrieval and extraction stages
// for one item.
func (s *Skimmer) processItem(ctx context.Context, position int, item sacamantecas.Item) skimResult {
	res := skimResult{position: position, item: item}

	profile, err := s.Profiles.Match(item.URI)
	if err != nil {
		res.err = err
		return res
	}
	res.profile = profile.Name

	if s.Limiter != nil {
		if host := hostOf(item.URI); host != "" {
			if err := s.Limiter.Wait(ctx, host); err != nil {
				res.err = err
				return res
			}
		}
	}

	doc, err := s.Retriever.Retrieve(ctx, item.URI)
	if err != nil {
		res.err = err
		return res
	}

	extractor, err := s.Extractors.For(profile.Strategy)
	if err != nil {
		res.err = err
		return res
	}

	res.record = extractor.Extract(doc.Content)
	res.fingerprint = Fingerprint(doc.Content)
	res.bytes = len(doc.Content)
	return res
}

// journal stores one item outcome. Journal write failures must not
// abort the batch; the logging decorator reports them.
func (s *Skimmer) journal(ctx context.Context, run *sacamantecas.Run, res *skimResult, status string) {
	if s.Journal == nil {
		return
	}
	entry := &sacamantecas.JournalEntry{
		RunID:       run.ID,
		URI:         res.item.URI,
		Profile:     res.profile,
		Status:      status,
		Fingerprint: res.fingerprint,
	}
	if res.err != nil {
		entry.Error = res.err.Error()
	}
	if status == sacamantecas.JournalOK {
		entry.Metadata = res.record
	}
	_ = s.Journal.Record(ctx, entry)
}

// hostOf extracts the host of a URI for rate limiting. file URIs and
// unparsable ones have no host.
func hostOf(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return u.Host
}
