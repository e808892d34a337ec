package lexicon

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon folds spelling variants of a tag onto one canonical entity.
// Tweets about the same topic routinely use several spellings
// (standwithukraine, istandwithukraine, standwithukraine2022); folding them
// keeps one node per topic in the co-occurrence graph.
//
// Groups may be written with the tags as they appear in posts: entries are
// lower-cased and a leading '#' is dropped when registered. Lookups only
// ignore case, since the extractor has already removed the marker.
type Lexicon struct {
	// canonical -> all variants (canonical first)
	aliases map[string][]string

	// variant -> canonical
	reverseIndex map[string]string
}

// AliasGroup is one canonical entity and the variants that map to it.
type AliasGroup struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		aliases:      make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// FromGroups builds a lexicon from alias groups, typically taken from the
// run configuration.
func FromGroups(groups []AliasGroup) *Lexicon {
	lex := New()
	for _, g := range groups {
		if strings.TrimSpace(g.Canonical) == "" {
			continue
		}
		lex.AddAliasGroup(g.Canonical, g.Variants)
	}
	return lex
}

// LoadFromYAML loads alias groups from a YAML file.
//
// Expected format:
//
//	aliases:
//	  - canonical: standwithukraine
//	    variants: [istandwithukraine, standwithukraine2022]
//	  - canonical: nato
//	    variants: [otan]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Aliases []AliasGroup `yaml:"aliases"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	return FromGroups(file.Aliases), nil
}

// AddAliasGroup registers canonical and its variants. Re-adding a canonical
// replaces its previous variants.
func (l *Lexicon) AddAliasGroup(canonical string, variants []string) {
	canonical = fold(canonical)

	if old, exists := l.aliases[canonical]; exists {
		for _, v := range old {
			delete(l.reverseIndex, v)
		}
	}

	normalized := make([]string, 0, len(variants)+1)
	seen := make(map[string]bool, len(variants)+1)
	normalized = append(normalized, canonical)
	seen[canonical] = true

	for _, v := range variants {
		v = fold(v)
		if v == "" || seen[v] {
			continue
		}
		normalized = append(normalized, v)
		seen[v] = true
	}

	l.aliases[canonical] = normalized
	for _, v := range normalized {
		l.reverseIndex[v] = canonical
	}
}

// Normalize returns the canonical form of an entity. An entity with no alias
// group comes back unchanged.
func (l *Lexicon) Normalize(entity string) string {
	if l == nil {
		return entity
	}
	if canonical, ok := l.reverseIndex[lookupKey(entity)]; ok {
		return canonical
	}
	return entity
}

// Variants returns every spelling in the entity's group, canonical first.
// An unknown entity returns a slice holding only itself.
func (l *Lexicon) Variants(entity string) []string {
	if canonical, ok := l.reverseIndex[lookupKey(entity)]; ok {
		return append([]string(nil), l.aliases[canonical]...)
	}
	return []string{entity}
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() LexiconStats {
	total := 0
	for _, variants := range l.aliases {
		total += len(variants)
	}
	return LexiconStats{
		AliasGroups:   len(l.aliases),
		TotalVariants: total,
	}
}

// LexiconStats holds statistics about lexicon contents.
type LexiconStats struct {
	AliasGroups   int // Number of canonical entities
	TotalVariants int // Variants across all groups, canonicals included
}

func fold(s string) string {
	return strings.TrimPrefix(lookupKey(s), "#")
}

func lookupKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
