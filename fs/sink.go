package fs

import (
	"bufio"
	"fmt"
	"os"

	"github.com/DervishD/sacamantecas"
)

// Text sink output format: the URI on its own line, one indented
// key: value line per pair, then a blank line.
const (
	metadataHeader = "%s\n"
	metadataPair   = "  %s: %s\n"
	metadataFooter = "\n"
)

// Ensure TextSink implements sacamantecas.Sink at compile time.
var _ sacamantecas.Sink = (*TextSink)(nil)

// TextSink dumps metadata into a text file named after its source.
// Barely pretty-printed, but it is more than enough for a dump. Items
// with no metadata leave no trace in the output.
type TextSink struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

// NewTextSink creates a sink writing to the _out sibling of source.
func NewTextSink(source string) (*TextSink, error) {
	path := SinkPath(source)
	f, err := os.Create(path)
	if err != nil {
		return nil, sacamantecas.Errorf(sacamantecas.EINVALID, "cannot create sink %q: %v", path, err)
	}
	return &TextSink{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Path returns the file the sink writes to.
func (s *TextSink) Path() string {
	return s.path
}

// Write appends one item's metadata.
func (s *TextSink) Write(item sacamantecas.Item, rec *sacamantecas.Record) error {
	if rec == nil || rec.Len() == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(s.w, metadataHeader, item.URI); err != nil {
		return err
	}
	for _, pair := range rec.Pairs() {
		if _, err := fmt.Fprintf(s.w, metadataPair, pair.Key, pair.Value); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(s.w, metadataFooter)
	return err
}

// Close flushes buffered output and closes the file.
func (s *TextSink) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
