package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/DervishD/sacamantecas"
)

// Ensure DumpingRetriever implements sacamantecas.Retriever at compile time.
var _ sacamantecas.Retriever = (*DumpingRetriever)(nil)

// DumpingRetriever decorates a retriever, writing the decoded content
// of every retrieved page into a directory for later inspection. Dump
// files are named after the URI they came from.
type DumpingRetriever struct {
	retriever sacamantecas.Retriever
	dir       string
}

// NewDumpingRetriever creates a retriever that dumps pages into dir.
func NewDumpingRetriever(r sacamantecas.Retriever, dir string) *DumpingRetriever {
	return &DumpingRetriever{retriever: r, dir: dir}
}

// Retrieve fetches the page and writes its decoded content to the dump
// directory before returning it.
func (d *DumpingRetriever) Retrieve(ctx context.Context, uri string) (*sacamantecas.Document, error) {
	doc, err := d.retriever.Retrieve(ctx, uri)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return nil, sacamantecas.Errorf(sacamantecas.EINTERNAL, "cannot create dump directory %q: %v", d.dir, err)
	}

	name := URIToFilename(doc.SourceURI) + "_dump.html"
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, []byte(doc.Content), 0644); err != nil {
		return nil, sacamantecas.Errorf(sacamantecas.EINTERNAL, "cannot dump page to %q: %v", path, err)
	}

	return doc, nil
}

// Close closes the decorated retriever.
func (d *DumpingRetriever) Close() error {
	return d.retriever.Close()
}
