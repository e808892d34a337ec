// Package cooc accumulates entity and entity-pair frequencies over a
// stream of per-record tag sets.
package cooc

import "sort"

// Pair is an unordered pair of distinct entities in canonical form (A < B).
type Pair struct {
	A, B string
}

// NewPair returns the canonical pair for a and b. ok is false for self
// pairs and empty entities.
func NewPair(a, b string) (p Pair, ok bool) {
	if a == "" || b == "" || a == b {
		return Pair{}, false
	}
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}, true
}

// PairFilter drops pairs at observation time.
type PairFilter interface {
	Blocks(a, b string) bool
}

// Counter maintains co-occurrence counts for one aggregation run.
//
// Counter is not safe for concurrent use. Parallel callers give each
// worker its own Counter and Merge them once all workers are done.
type Counter struct {
	records  int64            // tag sets offered to Observe
	observed int64            // tag sets with at least two entities
	nodes    map[string]int64 // records containing each entity
	edges    map[Pair]int64   // records containing both entities of a pair
	filter   PairFilter
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	c := &Counter{}
	c.Reset()
	return c
}

// Reset clears all counts. The pair filter is kept.
func (c *Counter) Reset() {
	c.records = 0
	c.observed = 0
	c.nodes = make(map[string]int64)
	c.edges = make(map[Pair]int64)
}

// SetPairFilter installs a filter consulted for every pair. Blocked pairs
// are not counted; their entities still are.
func (c *Counter) SetPairFilter(f PairFilter) {
	c.filter = f
}

// Observe adds one record's entities. Sets with fewer than two distinct
// entities contribute nothing. Duplicates in entities are ignored, so the
// slice may come straight from an extractor.
//
// Cost is O(k²) in the number of distinct entities k; this is the dominant
// cost of a run. Records with very large tag counts should be capped
// before they get here.
//
// Deduplicating records by key is the caller's job: Observe counts every
// call.
func (c *Counter) Observe(entities []string) {
	c.records++
	c.observeSorted(uniqueSorted(entities))
}

// ObserveSet is Observe for a set-shaped input such as extract.TagSet.
func (c *Counter) ObserveSet(set map[string]struct{}) {
	c.records++
	if len(set) < 2 {
		return
	}
	sorted := make([]string, 0, len(set))
	for e := range set {
		if e != "" {
			sorted = append(sorted, e)
		}
	}
	sort.Strings(sorted)
	c.observeSorted(sorted)
}

func (c *Counter) observeSorted(sorted []string) {
	if len(sorted) < 2 {
		return
	}
	c.observed++

	for _, t := range sorted {
		c.nodes[t]++
	}

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if c.filter != nil && c.filter.Blocks(sorted[i], sorted[j]) {
				continue
			}
			c.edges[Pair{A: sorted[i], B: sorted[j]}]++
		}
	}
}

// Merge adds other's counts into c. Addition is per key, so merging is
// commutative and associative.
func (c *Counter) Merge(other *Counter) {
	if other == nil {
		return
	}
	c.records += other.records
	c.observed += other.observed
	for t, n := range other.nodes {
		c.nodes[t] += n
	}
	for p, n := range other.edges {
		c.edges[p] += n
	}
}

// PairCount returns the co-occurrence count for a pair in either order
func (c *Counter) PairCount(a, b string) int64 {
	p, ok := NewPair(a, b)
	if !ok {
		return 0
	}
	return c.edges[p]
}

// NodeCount returns the number of contributing records containing t
func (c *Counter) NodeCount(t string) int64 {
	return c.nodes[t]
}

// Records returns the number of tag sets offered to the counter
func (c *Counter) Records() int64 {
	return c.records
}

// Observed returns the number of tag sets that contributed counts
func (c *Counter) Observed() int64 {
	return c.observed
}

// UniqueNodes returns the number of distinct entities
func (c *Counter) UniqueNodes() int {
	return len(c.nodes)
}

// UniquePairs returns the number of distinct pairs
func (c *Counter) UniquePairs() int {
	return len(c.edges)
}

// Snapshot is a point-in-time copy of a Counter. Taken mid-stream it is
// only a progress reading; it is final once the input is exhausted.
type Snapshot struct {
	Records  int64
	Observed int64
	Nodes    map[string]int64
	Edges    map[Pair]int64
}

// Snapshot returns a deep copy of the current totals.
func (c *Counter) Snapshot() Snapshot {
	nodes := make(map[string]int64, len(c.nodes))
	for t, n := range c.nodes {
		nodes[t] = n
	}
	edges := make(map[Pair]int64, len(c.edges))
	for p, n := range c.edges {
		edges[p] = n
	}
	return Snapshot{
		Records:  c.records,
		Observed: c.observed,
		Nodes:    nodes,
		Edges:    edges,
	}
}

// PairCount returns the count for a pair in either order
func (s Snapshot) PairCount(a, b string) int64 {
	p, ok := NewPair(a, b)
	if !ok {
		return 0
	}
	return s.Edges[p]
}

func uniqueSorted(entities []string) []string {
	if len(entities) < 2 {
		return nil
	}
	sorted := make([]string, 0, len(entities))
	for _, e := range entities {
		if e != "" {
			sorted = append(sorted, e)
		}
	}
	sort.Strings(sorted)

	out := sorted[:0]
	for i, e := range sorted {
		if i > 0 && e == sorted[i-1] {
			continue
		}
		out = append(out, e)
	}
	return out
}
