package extract

import "sort"

// TagSet is the set of distinct entities extracted from one record.
type TagSet map[string]struct{}

// NewTagSet builds a set from the given entities, dropping empty strings.
func NewTagSet(entities ...string) TagSet {
	ts := make(TagSet, len(entities))
	for _, e := range entities {
		ts.Add(e)
	}
	return ts
}

// Add inserts an entity; empty strings are ignored.
func (ts TagSet) Add(entity string) {
	if entity == "" {
		return
	}
	ts[entity] = struct{}{}
}

// Has reports whether the set contains entity.
func (ts TagSet) Has(entity string) bool {
	_, ok := ts[entity]
	return ok
}

// Len returns the number of entities.
func (ts TagSet) Len() int { return len(ts) }

// Sorted returns the entities in lexicographic order.
func (ts TagSet) Sorted() []string {
	out := make([]string, 0, len(ts))
	for e := range ts {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
