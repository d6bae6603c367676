// Package goquery implements the tagged-block extraction strategy on a
// parsed document. The marker element is located by tag name and one
// literal attribute, then its subtree is walked in document order
// collecting dt/dd pairs.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/DervishD/sacamantecas"
)

// Tags delimiting keys and values inside a tagged block.
const (
	keyTag   = "dt"
	valueTag = "dd"
)

// Ensure TaggedBlockExtractor implements sacamantecas.Extractor at
// compile time.
var _ sacamantecas.Extractor = (*TaggedBlockExtractor)(nil)

// TaggedBlockExtractor extracts metadata from a single container element
// identified by tag name and attribute.
type TaggedBlockExtractor struct {
	tag   string
	attr  string
	value string
}

// NewTaggedBlockExtractor creates an extractor for the marker of s.
func NewTaggedBlockExtractor(s *sacamantecas.TaggedBlockStrategy) *TaggedBlockExtractor {
	return &TaggedBlockExtractor{
		tag:   strings.ToLower(s.Tag),
		attr:  s.Attr,
		value: s.Value,
	}
}

// Extract parses markup and collects the dt/dd pairs found under the
// first marker element. Markup without a marker yields an empty record.
func (e *TaggedBlockExtractor) Extract(markup string) *sacamantecas.Record {
	builder := sacamantecas.NewRecordBuilder()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return builder.Record()
	}

	marker := e.findMarker(doc)
	if marker == nil {
		return builder.Record()
	}

	collectPairs(marker, builder)
	return builder.Record()
}

// findMarker returns the first element with the configured tag whose
// attribute matches the configured literal, comparing case insensitively.
func (e *TaggedBlockExtractor) findMarker(doc *goquery.Document) *html.Node {
	var marker *html.Node
	doc.Find(e.tag).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		node := sel.Get(0)
		for _, attr := range node.Attr {
			if strings.EqualFold(attr.Key, e.attr) && strings.EqualFold(attr.Val, e.value) {
				marker = node
				return false
			}
		}
		return true
	})
	return marker
}

// collectPairs walks the marker subtree in document order. A dt opens a
// key, a dd opens a value, and a closing dd commits the pair. The two
// states never overlap: a dd inside an open dt recovers the pair when
// some key text was already collected and cancels it otherwise.
func collectPairs(marker *html.Node, builder *sacamantecas.RecordBuilder) {
	var inKey, inValue bool

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			switch child.Type {
			case html.TextNode:
				if inKey {
					builder.AppendKey(child.Data)
				} else if inValue {
					builder.AppendValue(child.Data)
				}
			case html.ElementNode:
				switch child.Data {
				case keyTag:
					inKey = true
					if inValue {
						inValue = false
						builder.ResetValue()
					}
				case valueTag:
					inValue = true
					if inKey {
						inKey = false
						if !builder.HasKey() {
							inValue = false
						}
					}
				}

				walk(child)

				switch child.Data {
				case keyTag:
					inKey = false
				case valueTag:
					if inValue {
						inValue = false
						builder.Commit()
					}
				}
			}
		}
	}
	walk(marker)
}
