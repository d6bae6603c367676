// Package fs provides file based sources and sinks for the skim
// pipeline: URI lists in text files, metadata dumps, and raw page dumps
// for debugging.
package fs

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/DervishD/sacamantecas"
)

// sinkStem is appended to a source's file stem to name its sink.
const sinkStem = "_out"

var unsafeFilenameChars = regexp.MustCompile(`\W`)

// SinkPath derives the output path for a source file by appending _out
// to its stem: /data/urls.txt becomes /data/urls_out.txt.
func SinkPath(source string) string {
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + sinkStem + ext
}

// URIToFilename converts uri into a safe filename by replacing every
// non-word character with an underscore. Crude, but the result is still
// readable enough to recognize the URI it came from.
func URIToFilename(uri string) string {
	return unsafeFilenameChars.ReplaceAllString(uri, "_")
}

// Ensure TextSource implements sacamantecas.Source at compile time.
var _ sacamantecas.Source = (*TextSource)(nil)

// TextSource reads items from a UTF-8 text file with one URI per line.
// Lines that are not accepted URIs are silently skipped.
type TextSource struct {
	path string
}

// NewTextSource creates a source reading from the file at path.
func NewTextSource(path string) *TextSource {
	return &TextSource{path: path}
}

// Items returns one item per accepted URI, with Row set to the 1-based
// line number it came from.
func (s *TextSource) Items(_ context.Context) ([]sacamantecas.Item, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, sacamantecas.Errorf(sacamantecas.EINVALID, "cannot read source %q: %v", s.path, err)
	}
	defer f.Close()

	var items []sacamantecas.Item
	line := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line++
		uri := strings.TrimSpace(scanner.Text())
		if !sacamantecas.IsAcceptedURI(uri) {
			continue
		}
		items = append(items, sacamantecas.Item{URI: uri, Row: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, sacamantecas.Errorf(sacamantecas.EINVALID, "cannot read source %q: %v", s.path, err)
	}
	return items, nil
}
