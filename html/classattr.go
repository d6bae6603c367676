// Package html implements the class-attribute extraction strategy on a
// streaming tokenizer. Old catalogue markup is frequently ill-formed, so
// no tree is built: a flat scan keeps two marker states and commits one
// pair every time a value element closes.
package html

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/DervishD/sacamantecas"
)

// Ensure ClassAttributeExtractor implements sacamantecas.Extractor at
// compile time.
var _ sacamantecas.Extractor = (*ClassAttributeExtractor)(nil)

// ClassAttributeExtractor extracts metadata from markup where keys and
// values are marked with HTML class attributes.
type ClassAttributeExtractor struct {
	key   *sacamantecas.Pattern
	value *sacamantecas.Pattern
}

// NewClassAttributeExtractor creates an extractor for the patterns of s.
func NewClassAttributeExtractor(s *sacamantecas.ClassAttributeStrategy) *ClassAttributeExtractor {
	return &ClassAttributeExtractor{key: s.Key, value: s.Value}
}

// Extract scans markup token by token. Tokenization errors end the scan
// and yield whatever was accumulated up to that point.
func (e *ClassAttributeExtractor) Extract(markup string) *sacamantecas.Record {
	s := scanner{
		key:     e.key,
		value:   e.value,
		builder: sacamantecas.NewRecordBuilder(),
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return s.builder.Record()
		case html.StartTagToken:
			if tag, class, ok := tagAndClass(z); ok {
				s.start(tag, class)
			}
		case html.SelfClosingTagToken:
			if tag, class, ok := tagAndClass(z); ok {
				s.start(tag, class)
				s.end(tag)
			}
		case html.EndTagToken:
			tag, _ := z.TagName()
			s.end(string(tag))
		case html.TextToken:
			s.text(string(z.Text()))
		}
	}
}

// tagAndClass returns the tag name and the first class attribute of the
// current tag token. ok is false when the element has no class attribute.
func tagAndClass(z *html.Tokenizer) (string, string, bool) {
	name, hasAttr := z.TagName()
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if string(key) == "class" {
			return string(name), string(val), true
		}
	}
	return string(name), "", false
}

// scanner is the flat-scan state machine. inKey and inValue are
// independent: one element can satisfy both patterns.
type scanner struct {
	key     *sacamantecas.Pattern
	value   *sacamantecas.Pattern
	builder *sacamantecas.RecordBuilder

	inKey    bool
	inValue  bool
	keyTag   string
	valueTag string
}

func (s *scanner) start(tag, class string) {
	keyHit := s.key.Match(class)
	valueHit := s.value.Match(class)

	if keyHit {
		wasValue := s.inValue
		s.inKey = true
		s.keyTag = tag
		s.builder.ResetKey()
		if wasValue && !valueHit {
			// A key marker opened while a value was still pending.
			// Abandon the value and start afresh.
			s.inValue = false
			s.valueTag = ""
			s.builder.ResetValue()
		}
	}

	if valueHit {
		wasKey := s.inKey && !keyHit
		s.inValue = true
		s.valueTag = tag
		s.builder.ResetValue()
		if wasKey {
			// A value marker opened while a key was still pending.
			// The pair is recoverable only if some key text was
			// already collected.
			s.inKey = false
			s.keyTag = ""
			if !s.builder.HasKey() {
				s.inValue = false
				s.valueTag = ""
			}
		}
	}
}

func (s *scanner) text(data string) {
	if s.inKey {
		s.builder.AppendKey(data)
	}
	if s.inValue {
		s.builder.AppendValue(data)
	}
}

func (s *scanner) end(tag string) {
	if s.inKey && tag == s.keyTag {
		s.inKey = false
		s.keyTag = ""
	}
	if s.inValue && tag == s.valueTag {
		s.inValue = false
		s.valueTag = ""
		s.builder.Commit()
	}
}
