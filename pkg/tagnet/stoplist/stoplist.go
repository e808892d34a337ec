package stoplist

import (
	"sort"
	"strings"
)

// DefaultExclusions are placeholder values that leak into hashtag columns
// from upstream exports (Python None, booleans, pandas NaN).
var DefaultExclusions = []string{"none", "true", "false", "nan", "null"}

// Manager holds the set of literal entities discarded unconditionally
// during extraction.
type Manager struct {
	stops map[string]Reason
}

// Reason explains why an entity is excluded
type Reason struct {
	Configured bool    // listed in configuration
	HighDF     bool    // present in a large share of records
	LowNPMI    bool    // never associates strongly with another entity
	DFPercent  float64 // share of records containing the entity
	NPMIMax    float64 // strongest NPMI with any partner
}

// NewManager creates a manager seeded with configured exclusions.
// Entries are lower-cased; a leading '#' is dropped.
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]Reason, len(initialStops))
	for _, s := range initialStops {
		stops[normalize(s)] = Reason{Configured: true}
	}
	return &Manager{stops: stops}
}

// IsStop checks if an entity is excluded. A nil manager excludes nothing.
func (m *Manager) IsStop(token string) bool {
	if m == nil {
		return false
	}
	_, ok := m.stops[token]
	return ok
}

// Add adds an entity to the exclusion set with a reason
func (m *Manager) Add(token string, reason Reason) {
	m.stops[normalize(token)] = reason
}

// All returns all excluded entities in sorted order
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Len returns the number of excluded entities
func (m *Manager) Len() int {
	return len(m.stops)
}

// Stats holds per-entity statistics for candidate evaluation
type Stats struct {
	Token     string
	DF        int64   // records containing the entity
	DFPercent float64 // DF as a percentage of records with entities
	NPMIMax   float64 // strongest NPMI with any partner
	HasPairs  bool    // false when the entity never co-occurred
}

// Candidate represents a suggested exclusion
type Candidate struct {
	Token  string
	Reason Reason
	Score  float64 // confidence score in [0,1]
}

// Thresholds defines criteria for noise identification
type Thresholds struct {
	DFPercent float64 // e.g. 30: entity appears in 30% of tagged records
	NPMIMax   float64 // e.g. 0.1 on the NPMI scale [-1,1]
}

// DefaultThresholds returns the thresholds used by the stats command.
// Search-query hashtags sit in most records of their own export, so the DF
// bar is lower than for prose stopwords.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DFPercent: 30.0,
		NPMIMax:   0.1,
	}
}

// SuggestCandidates suggests entities that behave like noise: they are
// present almost everywhere yet associate with nothing in particular.
// Results are ordered by score, highest first.
func (m *Manager) SuggestCandidates(stats []Stats, thresholds Thresholds) []Candidate {
	var candidates []Candidate

	for _, s := range stats {
		if m.IsStop(s.Token) {
			continue
		}

		highDF := s.DFPercent > thresholds.DFPercent
		lowNPMI := !s.HasPairs || s.NPMIMax < thresholds.NPMIMax
		if !highDF || !lowNPMI {
			continue
		}

		npmi := s.NPMIMax
		if !s.HasPairs || npmi < 0 {
			npmi = 0
		}
		if npmi > 1 {
			npmi = 1
		}

		candidates = append(candidates, Candidate{
			Token: s.Token,
			Reason: Reason{
				HighDF:    true,
				LowNPMI:   true,
				DFPercent: s.DFPercent,
				NPMIMax:   s.NPMIMax,
			},
			Score: (s.DFPercent/100.0 + (1.0 - npmi)) / 2.0,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score == candidates[j].Score {
			return candidates[i].Token < candidates[j].Token
		}
		return candidates[i].Score > candidates[j].Score
	})

	return candidates
}

func normalize(s string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "#")
}
