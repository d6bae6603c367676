package sacamantecas

import (
	"context"
	"time"
)

// Document represents a retrieved page, decoded to UTF-8 text.
type Document struct {
	// SourceURI is the URI the retrieval started from.
	SourceURI string

	// URI is the final URI, after protocol redirects and at most one
	// meta-refresh hop.
	URI string

	// Charset is the canonical name of the charset the body was decoded
	// from.
	Charset string

	// Content is the decoded markup.
	Content string

	// Retrieved is when the document was obtained.
	Retrieved time.Time
}

// Retriever retrieves pages from URIs.
type Retriever interface {
	// Retrieve fetches uri and returns the decoded document.
	// Returns ERETRIEVAL for transport and protocol failures and EDECODE
	// when the body cannot be decoded to text.
	// The context controls timeout and cancellation.
	Retrieve(ctx context.Context, uri string) (*Document, error)

	// Close releases resources held by the retriever.
	// Must be called when the Retriever is no longer needed.
	Close() error
}

// DomainLimiter provides per-host rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the host.
	// Returns an error if the context is canceled first.
	Wait(ctx context.Context, host string) error
}
