package config

import (
	"fmt"

	"github.com/cognicore/tagnet/pkg/tagnet/extract"
	"github.com/cognicore/tagnet/pkg/tagnet/lexicon"
	"github.com/cognicore/tagnet/pkg/tagnet/stoplist"
)

// Loader loads referenced files and constructs components for a Config
type Loader struct {
	Config Config
}

// Components holds all loaded configuration components
type Components struct {
	Extractor *extract.Extractor
	Stoplist  *stoplist.Manager
	Pairs     *stoplist.PairBlocklist
	Lexicon   *lexicon.Lexicon
}

// Load reads the stoplist and alias files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	cfg := l.Config
	comp := &Components{}

	// Exclusions: inline list plus optional file
	terms := append([]string(nil), cfg.Exclude...)
	if cfg.StoplistFile != "" {
		sl, err := LoadStoplist(cfg.StoplistFile)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		terms = append(terms, sl.Terms...)
	}
	comp.Stoplist = stoplist.NewManager(terms)

	pairs := make([][2]string, 0, len(cfg.DropPairs))
	for _, p := range cfg.DropPairs {
		if len(p) == 2 {
			pairs = append(pairs, [2]string{p[0], p[1]})
		}
	}
	comp.Pairs = stoplist.NewPairBlocklist(pairs)

	// Aliases: file first, inline groups on top. Without either the
	// extractor gets no lexicon and entities pass through untouched.
	if cfg.AliasFile != "" {
		lex, err := lexicon.LoadFromYAML(cfg.AliasFile)
		if err != nil {
			return nil, fmt.Errorf("load aliases: %w", err)
		}
		comp.Lexicon = lex
	} else if len(cfg.Aliases) > 0 {
		comp.Lexicon = lexicon.New()
	}
	for _, g := range cfg.Aliases {
		comp.Lexicon.AddAliasGroup(g.Canonical, g.Variants)
	}

	policy, err := extract.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}
	comp.Extractor = extract.New(extract.Options{
		Policy:      policy,
		MinLength:   cfg.MinLength,
		Marker:      cfg.MarkerRune(),
		StripMarkup: cfg.StripMarkup,
		Exclusions:  comp.Stoplist,
		Lexicon:     comp.Lexicon,
	})

	return comp, nil
}
