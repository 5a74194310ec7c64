// Package bloom provides a fast membership test for stored filings.
package bloom

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/edgarscan"
)

// Filter wraps a Bloom filter over filing keys.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add adds a key to the filter.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// Test returns true if the key might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(key string) bool {
	return f.f.TestString(key)
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Presence configuration.
const (
	minExpectedFilings = 1024
	falsePositiveRate  = 0.01
)

// Presence reports whether filings are already stored. A negative filter
// answer is final; a positive one is confirmed on disk.
type Presence struct {
	filter *Filter
	exists func(edgarscan.FilingKey) bool
}

// NewPresence builds a Presence over stored filings. exists confirms
// filter hits.
func NewPresence(stored []edgarscan.Filing, exists func(edgarscan.FilingKey) bool) *Presence {
	n := uint(max(len(stored), minExpectedFilings))
	f := NewFilter(n, falsePositiveRate)
	for _, s := range stored {
		f.Add(s.Key.String())
	}
	return &Presence{filter: f, exists: exists}
}

// Has reports whether the filing is stored.
func (p *Presence) Has(key edgarscan.FilingKey) bool {
	if !p.filter.Test(key.String()) {
		return false
	}
	return p.exists(key)
}
