// Package dedupe drops records whose key has already been seen in a run.
package dedupe

import "strings"

// Set remembers record keys. The zero value is not usable; call New.
type Set struct {
	seen    map[string]struct{}
	dropped int64
}

// New creates an empty key set.
func New() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// First reports whether key is being seen for the first time and records it.
// Blank keys are never deduplicated.
func (s *Set) First(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}
	if _, ok := s.seen[key]; ok {
		s.dropped++
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Len returns the number of distinct keys seen
func (s *Set) Len() int {
	return len(s.seen)
}

// Dropped returns how many records were rejected as duplicates
func (s *Set) Dropped() int64 {
	return s.dropped
}
