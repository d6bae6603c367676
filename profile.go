package sacamantecas

import (
	"time"

	"github.com/dlclark/regexp2"
)

// patternTimeout bounds pattern evaluation. Profile patterns come from
// user-supplied files and regexp2 matching is not guaranteed linear.
const patternTimeout = time.Second

// Pattern is a case-insensitive regular expression used by profiles.
// Unlike the standard library engine it supports look-around assertions,
// so a profile can match the class celdaTablaR but not celdaTablaRFoto
// with celdaTablaR(?!Foto).
type Pattern struct {
	re  *regexp2.Regexp
	src string
}

// CompilePattern compiles expr into a case-insensitive Pattern.
func CompilePattern(expr string) (*Pattern, error) {
	re, err := regexp2.Compile(expr, regexp2.IgnoreCase)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = patternTimeout
	return &Pattern{re: re, src: expr}, nil
}

// MustCompilePattern is like CompilePattern but panics if the expression
// cannot be parsed. It simplifies safe initialization in tests.
func MustCompilePattern(expr string) *Pattern {
	p, err := CompilePattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether the pattern matches anywhere in s.
// A pattern that exceeds its evaluation timeout reports no match.
func (p *Pattern) Match(s string) bool {
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

// String returns the source expression the pattern was compiled from.
func (p *Pattern) String() string {
	return p.src
}

// Strategy describes how metadata is recognized inside a page's markup.
// Exactly two implementations exist, ClassAttributeStrategy and
// TaggedBlockStrategy. Profiles obtain them through the registry loader,
// which guarantees they are complete.
type Strategy interface {
	strategy()
}

// ClassAttributeStrategy marks metadata with HTML class attributes: an
// element whose class matches Key starts a metadata key, one whose class
// matches Value starts a metadata value.
type ClassAttributeStrategy struct {
	Key   *Pattern
	Value *Pattern
}

func (*ClassAttributeStrategy) strategy() {}

// TaggedBlockStrategy locates a single marker element, identified by its
// literal tag name and one literal attribute name/value, which holds the
// metadata as dt/dd term and definition pairs.
type TaggedBlockStrategy struct {
	Tag   string
	Attr  string
	Value string
}

func (*TaggedBlockStrategy) strategy() {}

// Profile pairs a URL pattern with the extraction strategy for the pages
// it matches.
type Profile struct {
	Name     string
	URL      *Pattern
	Strategy Strategy
}

// ProfileRegistry matches URIs against the loaded profiles.
// Implementations are immutable after loading and safe for concurrent use.
type ProfileRegistry interface {
	// Match returns the first profile, in declaration order, whose URL
	// pattern matches uri.
	// Returns ENOPROFILE if no profile matches.
	Match(uri string) (*Profile, error)
}
