package sacamantecas

import (
	"context"
	"net/url"
)

// IsAcceptedURI reports whether uri carries one of the schemes sources
// accept: https, http or file. The check is quite crude but it works
// for the application's needs.
func IsAcceptedURI(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "https", "http", "file":
		return true
	}
	return false
}

// Item is one URI produced by a source. Row is the 1-based line or
// spreadsheet row the URI came from; 0 when the source has no such notion.
type Item struct {
	URI string
	Row int
}

// Source yields the items to be skimmed.
type Source interface {
	Items(ctx context.Context) ([]Item, error)
}

// Sink receives the metadata skimmed for a source's items.
// Write is never called concurrently. Close flushes pending output and
// must be called once all items are written.
type Sink interface {
	Write(item Item, rec *Record) error
	Close() error
}
