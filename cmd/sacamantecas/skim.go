package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/DervishD/sacamantecas"
	"github.com/DervishD/sacamantecas/excelize"
	"github.com/DervishD/sacamantecas/fs"
	"github.com/DervishD/sacamantecas/skim"
)

// Run executes the skim command. Each source is processed with its own
// sink; a failing source does not stop the remaining ones.
func (c *SkimCmd) Run(deps *Dependencies) error {
	if len(c.Sources) == 0 {
		return errNoSources
	}

	warned := false
	for _, source := range c.Sources {
		if deps.Ctx.Err() != nil {
			return deps.Ctx.Err()
		}
		failed, err := c.skimSource(deps, source)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "%s: %s\n", source, errorText(err))
			warned = true
			continue
		}
		if failed > 0 {
			warned = true
		}
	}
	if warned {
		return errWarnings
	}
	return nil
}

// skimSource processes one source argument end to end and returns how
// many of its items failed.
func (c *SkimCmd) skimSource(deps *Dependencies, arg string) (int, error) {
	src, sink, showProgress, err := openSource(arg, deps.Stdout)
	if err != nil {
		return 0, err
	}

	items, err := src.Items(deps.Ctx)
	if err != nil {
		sink.Close()
		return 0, err
	}

	var progress skim.ProgressFunc
	if showProgress {
		progress = progressPrinter(deps.Stdout, deps.Stderr)
	}

	result, err := deps.Skimmer.SkimBatch(deps.Ctx, items, sink, progress)
	closeErr := sink.Close()
	if err != nil {
		return 0, err
	}
	if closeErr != nil {
		return result.Failed, closeErr
	}

	fmt.Fprintf(deps.Stdout, "%s: skimmed %d, empty %d, skipped %d, failed %d (%s)\n",
		arg, result.Skimmed, result.Empty, result.Skipped, result.Failed, skim.FormatBytes(result.Bytes))
	return result.Failed, nil
}

// openSource pairs a source argument with its sink. A URL is skimmed on
// its own, with the metadata printed and saved next to the working
// directory; a .txt file is a URI list with a _out.txt sibling; an
// .xlsx file is processed into an annotated copy of itself.
func openSource(arg string, stdout io.Writer) (sacamantecas.Source, sacamantecas.Sink, bool, error) {
	switch {
	case sacamantecas.IsAcceptedURI(arg):
		sink, err := fs.NewTextSink(fs.URIToFilename(arg) + ".txt")
		if err != nil {
			return nil, nil, false, err
		}
		return singleSource{uri: arg}, multiSink{&printSink{w: stdout}, sink}, false, nil
	case strings.EqualFold(filepath.Ext(arg), ".txt"):
		sink, err := fs.NewTextSink(arg)
		if err != nil {
			return nil, nil, false, err
		}
		return fs.NewTextSource(arg), sink, true, nil
	case strings.EqualFold(filepath.Ext(arg), ".xlsx"):
		wb, err := excelize.Open(arg)
		if err != nil {
			return nil, nil, false, err
		}
		return wb, wb, true, nil
	}
	return nil, nil, false, sacamantecas.Errorf(sacamantecas.EINVALID, "unsupported source %q", arg)
}

// progressPrinter renders batch progress in place. Failures get their
// own line on stderr so they stay visible after the batch finishes.
func progressPrinter(stdout, stderr io.Writer) skim.ProgressFunc {
	return func(event skim.ProgressEvent) {
		switch event.Type {
		case skim.ProgressStarted:
			fmt.Fprintf(stdout, "%d items\n", event.Total)
		case skim.ProgressCompleted, skim.ProgressEmpty, skim.ProgressSkipped:
			fmt.Fprintf(stdout, "\r[%d/%d] %s", event.Completed, event.Total, skim.TruncateURI(event.URI, 60))
		case skim.ProgressFailed:
			fmt.Fprintf(stderr, "\nfailed %s: %s\n", event.URI, errorText(event.Error))
		case skim.ProgressFinished:
			if event.Total > 0 {
				fmt.Fprintln(stdout)
			}
		}
	}
}

// singleSource yields one explicitly given URI.
type singleSource struct {
	uri string
}

func (s singleSource) Items(context.Context) ([]sacamantecas.Item, error) {
	return []sacamantecas.Item{{URI: s.uri, Row: 1}}, nil
}

// printSink prints metadata to the terminal, in the text sink format.
type printSink struct {
	w io.Writer
}

func (s *printSink) Write(item sacamantecas.Item, rec *sacamantecas.Record) error {
	if rec == nil || rec.Len() == 0 {
		_, err := fmt.Fprintf(s.w, "%s: no metadata\n", item.URI)
		return err
	}
	fmt.Fprintln(s.w, item.URI)
	for _, pair := range rec.Pairs() {
		fmt.Fprintf(s.w, "  %s: %s\n", pair.Key, pair.Value)
	}
	return nil
}

func (s *printSink) Close() error { return nil }

// multiSink fans every write out to all its sinks.
type multiSink []sacamantecas.Sink

func (m multiSink) Write(item sacamantecas.Item, rec *sacamantecas.Record) error {
	for _, s := range m {
		if err := s.Write(item, rec); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) Close() error {
	var firstErr error
	for _, s := range m {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
