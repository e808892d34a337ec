// Package extract turns raw hashtag fields into normalized entity sets.
//
// A field is first tried as a list literal. When that fails, the
// extractor falls back to the policy chosen by the caller: splitting on
// separators, or scanning free text for marker-prefixed tokens. The two
// fallbacks disagree on ambiguous input and neither is preferred; callers
// must pick one.
package extract

import (
	"fmt"
	"strings"

	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
	"github.com/cognicore/tagnet/pkg/tagnet/lexicon"
	"github.com/cognicore/tagnet/pkg/tagnet/stoplist"
)

// Policy selects the fallback used when a field is not a list literal.
type Policy int

const (
	// SeparatorSplit splits on commas, semicolons and whitespace and drops
	// entities shorter than the minimum length.
	SeparatorSplit Policy = iota
	// MarkerScan collects marker-prefixed tokens of two or more word
	// characters; no minimum length applies.
	MarkerScan
)

// DefaultMinLength is the separator-split minimum entity length.
const DefaultMinLength = 3

// DefaultMarker is the character that prefixes a tag.
const DefaultMarker = '#'

func (p Policy) String() string {
	switch p {
	case SeparatorSplit:
		return "separator"
	case MarkerScan:
		return "marker"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a configuration value onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "separator", "split", "separator-split":
		return SeparatorSplit, nil
	case "marker", "regex", "marker-scan":
		return MarkerScan, nil
	default:
		return 0, fmt.Errorf("unknown extraction policy %q: %w", s, internalerr.ErrInvalidConfig)
	}
}

// Options configures an Extractor.
type Options struct {
	Policy      Policy
	MinLength   int  // separator-split only; 0 means DefaultMinLength
	Marker      rune // 0 means DefaultMarker
	StripMarkup bool // decode HTML before the fallback strategy

	// Exclusions are discarded after normalization. Nil means
	// stoplist.DefaultExclusions.
	Exclusions *stoplist.Manager
	// Lexicon folds aliases onto canonical entities; optional.
	Lexicon *lexicon.Lexicon
}

// Extractor is safe for concurrent use once constructed.
type Extractor struct {
	policy      Policy
	strategies  []Strategy
	stripMarkup bool
	exclusions  *stoplist.Manager
	lexicon     *lexicon.Lexicon
}

// Outcome describes how a field was extracted.
type Outcome struct {
	Tags     TagSet
	Strategy string // name of the strategy that produced Tags; empty for blank input
	// Malformed is true when the field looked like a list literal but
	// could not be parsed and the fallback was used instead.
	Malformed bool
}

// New creates an extractor.
func New(opts Options) *Extractor {
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}
	if opts.Marker == 0 {
		opts.Marker = DefaultMarker
	}
	if opts.Exclusions == nil {
		opts.Exclusions = stoplist.NewManager(stoplist.DefaultExclusions)
	}

	var fallback Strategy
	switch opts.Policy {
	case MarkerScan:
		fallback = newMarkerScan(opts.Marker)
	default:
		fallback = separatorSplit{marker: opts.Marker, minLength: opts.MinLength}
	}

	return &Extractor{
		policy:      opts.Policy,
		strategies:  []Strategy{literalList{marker: opts.Marker}, fallback},
		stripMarkup: opts.StripMarkup,
		exclusions:  opts.Exclusions,
		lexicon:     opts.Lexicon,
	}
}

// Policy returns the fallback policy in use.
func (e *Extractor) Policy() Policy { return e.policy }

// Extract returns the normalized entity set of a raw field. Blank input
// yields an empty set; parse failures degrade to the fallback strategy.
func (e *Extractor) Extract(raw string) TagSet {
	return e.ExtractDetailed(raw).Tags
}

// ExtractNullable treats a nil field as missing.
func (e *Extractor) ExtractNullable(raw *string) TagSet {
	if raw == nil {
		return TagSet{}
	}
	return e.Extract(*raw)
}

// ExtractDetailed is Extract plus which strategy produced the result.
func (e *Extractor) ExtractDetailed(raw string) Outcome {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Outcome{Tags: TagSet{}}
	}

	listShaped := strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")

	for i, strat := range e.strategies {
		input := s
		if i > 0 && e.stripMarkup {
			input = StripMarkup(s)
		}
		res := strat.Apply(input)
		if !res.OK {
			continue
		}
		return Outcome{
			Tags:      e.finish(res.Entities),
			Strategy:  strat.Name(),
			Malformed: listShaped && i > 0,
		}
	}
	return Outcome{Tags: TagSet{}}
}

// finish folds aliases, removes exclusions and deduplicates.
func (e *Extractor) finish(entities []string) TagSet {
	ts := make(TagSet, len(entities))
	for _, ent := range entities {
		if e.lexicon != nil {
			ent = e.lexicon.Normalize(ent)
		}
		if ent == "" || e.exclusions.IsStop(ent) {
			continue
		}
		ts[ent] = struct{}{}
	}
	return ts
}
