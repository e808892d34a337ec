package config

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/tagnet/pkg/tagnet/extract"
	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
	"github.com/cognicore/tagnet/pkg/tagnet/lexicon"
	"github.com/cognicore/tagnet/pkg/tagnet/stoplist"
)

// Config is one run's configuration
type Config struct {
	Inputs []string `yaml:"inputs"`
	Format string   `yaml:"format"` // csv, jsonl or auto (by extension)
	Field  string   `yaml:"field"`  // column holding the raw tag field
	Key    string   `yaml:"key"`    // record key column; empty disables dedup

	Policy      string `yaml:"policy"`
	Marker      string `yaml:"marker"`
	MinLength   int    `yaml:"min_length"`
	StripMarkup bool   `yaml:"strip_markup"`
	MaxTags     int    `yaml:"max_tags"` // 0 disables the per-record cap

	MinEdgeSupport int64 `yaml:"min_edge_support"`
	MinNodeCount   int64 `yaml:"min_node_count"`
	DropIsolated   bool  `yaml:"drop_isolated"`

	TopN             int     `yaml:"top_n"`
	TopPairs         int     `yaml:"top_pairs"`
	TopEntities      int     `yaml:"top_entities"`
	Seed             *uint64 `yaml:"seed"`
	Resolution       float64 `yaml:"resolution"`
	LayoutIterations int     `yaml:"layout_iterations"`

	Workers       int   `yaml:"workers"`
	ProgressEvery int64 `yaml:"progress_every"`

	Exclude      []string             `yaml:"exclude"`
	StoplistFile string               `yaml:"stoplist_file"`
	DropPairs    [][]string           `yaml:"drop_pairs"`
	Aliases      []lexicon.AliasGroup `yaml:"aliases"`
	AliasFile    string               `yaml:"alias_file"`
}

// Defaults returns the configuration used when a field is not set.
func Defaults() Config {
	return Config{
		Format:           "auto",
		Field:            "hashtags",
		Key:              "id",
		Policy:           "separator",
		Marker:           "#",
		MinLength:        extract.DefaultMinLength,
		MinEdgeSupport:   3,
		MinNodeCount:     1,
		TopN:             150,
		TopPairs:         10,
		TopEntities:      20,
		Resolution:       1.0,
		LayoutIterations: 50,
		Workers:          1,
		ProgressEvery:    100000,
		Exclude:          append([]string(nil), stoplist.DefaultExclusions...),
	}
}

// Load reads a YAML file over Defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %v: %w", path, err, internalerr.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf(format+": %w", append(args, internalerr.ErrInvalidConfig)...)
	}

	if c.MinEdgeSupport < 1 {
		return invalid("min_edge_support must be at least 1, got %d", c.MinEdgeSupport)
	}
	if _, err := extract.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if c.Marker != "" && utf8.RuneCountInString(c.Marker) != 1 {
		return invalid("marker must be a single character, got %q", c.Marker)
	}
	switch strings.ToLower(c.Format) {
	case "", "auto", "csv", "jsonl":
	default:
		return invalid("unknown input format %q", c.Format)
	}
	if strings.TrimSpace(c.Field) == "" {
		return invalid("field is required")
	}
	if c.MinLength < 0 || c.MaxTags < 0 {
		return invalid("min_length and max_tags must not be negative")
	}
	if c.TopN < 0 || c.TopPairs < 0 || c.TopEntities < 0 {
		return invalid("top_n, top_pairs and top_entities must not be negative")
	}
	if c.Workers < 0 {
		return invalid("workers must not be negative, got %d", c.Workers)
	}
	if c.Resolution < 0 {
		return invalid("resolution must not be negative, got %g", c.Resolution)
	}
	for i, p := range c.DropPairs {
		if len(p) != 2 {
			return invalid("drop_pairs[%d] must have exactly two entries", i)
		}
	}
	return nil
}

// MarkerRune returns the configured marker, or the default.
func (c Config) MarkerRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Marker)
	if r == utf8.RuneError {
		return extract.DefaultMarker
	}
	return r
}

// Stoplist is an exclusion file: a YAML document with a terms list
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads exclusions from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
