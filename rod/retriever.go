// Package rod provides a browser-rendering sacamantecas.Retriever for
// catalogues that build their record pages with JavaScript. Pages come
// back as the rendered DOM, already UTF-8, with every redirect resolved
// by the browser itself.
package rod

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/DervishD/sacamantecas"
)

// DefaultTimeout bounds one retrieval, rendering included.
const DefaultTimeout = 60 * time.Second

// Ensure Retriever implements sacamantecas.Retriever at compile time.
var _ sacamantecas.Retriever = (*Retriever)(nil)

// Retriever retrieves rendered pages using Chrome browser automation.
// Retriever is safe for concurrent use by multiple goroutines.
type Retriever struct {
	manager     *BrowserManager
	timeout     time.Duration
	managerOpts []ManagerOption
	closed      atomic.Bool
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithTimeout sets the per-retrieval timeout.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(r *Retriever) {
		r.timeout = d
	}
}

// WithPagesPerBrowser sets how many pages are processed before the
// underlying browser is recycled.
func WithPagesPerBrowser(n int64) Option {
	return func(r *Retriever) {
		r.managerOpts = append(r.managerOpts, WithMaxPages(n))
	}
}

// NewRetriever creates a Retriever backed by a headless Chrome browser.
// Close must be called when the Retriever is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewRetriever(opts ...Option) (*Retriever, error) {
	r := &Retriever{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}

	manager, err := NewBrowserManager(r.managerOpts...)
	if err != nil {
		return nil, err
	}
	r.manager = manager

	return r, nil
}

// Retrieve navigates to uri and returns the rendered document. The
// browser follows every redirect on its own, meta refresh included, so
// the document reflects wherever navigation ended up.
func (r *Retriever) Retrieve(ctx context.Context, uri string) (*sacamantecas.Document, error) {
	if r.closed.Load() {
		return nil, sacamantecas.Errorf(sacamantecas.EINVALID, "retriever is closed")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := r.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, retrievalError(uri, err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(uri); err != nil {
		return nil, retrievalError(uri, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, retrievalError(uri, err)
	}

	info, err := page.Info()
	if err != nil {
		return nil, retrievalError(uri, err)
	}
	content, err := page.HTML()
	if err != nil {
		return nil, retrievalError(uri, err)
	}

	r.manager.IncrementPageCount()

	return &sacamantecas.Document{
		SourceURI: uri,
		URI:       info.URL,
		// The DevTools protocol hands the DOM over as UTF-8 no matter
		// what the page declared.
		Charset:   "utf-8",
		Content:   content,
		Retrieved: time.Now(),
	}, nil
}

// retrievalError classifies a browser failure. Context errors pass
// through unchanged so cancellation remains detectable with errors.Is.
func retrievalError(uri string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return sacamantecas.Errorf(sacamantecas.ERETRIEVAL, "cannot retrieve %q: %v", uri, err)
}

// Close releases browser resources. Close is safe to call multiple times.
func (r *Retriever) Close() error {
	r.closed.Store(true)
	return r.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (r *Retriever) LauncherPID() int {
	return r.manager.LauncherPID()
}
