package frontier

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// VisitedSet deduplicates URL fingerprints. A Bloom filter answers the common
// "never seen" case without touching the map; an exact set backs it so a
// Bloom false positive can never skip a page.
type VisitedSet struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
	exact  map[string]struct{}
}

// NewVisitedSet creates a visited set sized for the expected number of
// fingerprints.
func NewVisitedSet(estimatedItems int) *VisitedSet {
	if estimatedItems < 1000 {
		estimatedItems = 1000
	}
	return &VisitedSet{
		filter: bloom.NewWithEstimates(uint(estimatedItems), 0.001),
		exact:  make(map[string]struct{}),
	}
}

// Add marks a fingerprint as visited.
func (v *VisitedSet) Add(fingerprint string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.exact[fingerprint]; exists {
		return
	}
	v.filter.AddString(fingerprint)
	v.exact[fingerprint] = struct{}{}
}

// Has reports whether a fingerprint was already visited.
func (v *VisitedSet) Has(fingerprint string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if !v.filter.TestString(fingerprint) {
		return false
	}
	_, exists := v.exact[fingerprint]
	return exists
}

// Count returns the number of distinct fingerprints seen.
func (v *VisitedSet) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.exact)
}

// All returns every fingerprint seen so far, in no particular order.
func (v *VisitedSet) All() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]string, 0, len(v.exact))
	for fp := range v.exact {
		out = append(out, fp)
	}
	return out
}

// AddAll marks a batch of fingerprints visited (used when resuming a crawl).
func (v *VisitedSet) AddAll(fingerprints []string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, fp := range fingerprints {
		if _, exists := v.exact[fp]; exists {
			continue
		}
		v.filter.AddString(fp)
		v.exact[fp] = struct{}{}
	}
}
