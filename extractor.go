package sacamantecas

// Extractor extracts metadata from markup.
// Implementations are pure functions over their input: Extract never
// fails, is idempotent, and is safe for concurrent use. Malformed markup
// yields whatever was accumulated up to that point, possibly an empty
// record; callers treat an empty record as "no metadata", never as an
// error.
type Extractor interface {
	Extract(markup string) *Record
}

// ExtractorRegistry resolves the extractor implementing a profile's
// strategy.
type ExtractorRegistry interface {
	// For returns an extractor implementing s.
	// Returns EINVALID if s is not a known strategy.
	For(s Strategy) (Extractor, error)
}
