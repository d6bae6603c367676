// Package bloom provides probabilistic URI deduplication.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter tracks URIs already handed to the pipeline. False positives are
// possible, so a URI may occasionally be skipped as a duplicate when it
// is not; false negatives are not possible.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a filter sized for n expected URIs with the given
// false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Seen reports whether uri was passed to a previous call, and marks it
// as seen.
func (f *Filter) Seen(uri string) bool {
	if f.f.TestString(uri) {
		return true
	}
	f.f.AddString(uri)
	return false
}

// EstimatedCount returns the approximate number of URIs seen so far.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
