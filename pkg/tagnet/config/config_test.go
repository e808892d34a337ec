package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/tagnet/pkg/tagnet/internalerr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.MinEdgeSupport != 3 || cfg.MinLength != 3 || cfg.TopN != 150 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Seed != nil {
		t.Error("seed should be unset by default")
	}
	if cfg.MarkerRune() != '#' {
		t.Errorf("marker = %q, want '#'", cfg.MarkerRune())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, "run.yaml", `
inputs: [Data/Russia_invade.csv, Data/Russian_border_Ukraine.csv]
field: text
policy: marker
min_edge_support: 5
seed: 42
workers: 4
exclude: [none, nan]
drop_pairs:
  - [ptid, pup]
  - [fjb, letsgobrandon]
aliases:
  - canonical: standwithukraine
    variants: [istandwithukraine]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Inputs) != 2 || cfg.Field != "text" || cfg.Policy != "marker" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.MinEdgeSupport != 5 || cfg.Workers != 4 {
		t.Errorf("min_edge_support=%d workers=%d", cfg.MinEdgeSupport, cfg.Workers)
	}
	if cfg.Seed == nil || *cfg.Seed != 42 {
		t.Errorf("seed = %v, want 42", cfg.Seed)
	}
	if len(cfg.Exclude) != 2 {
		t.Errorf("exclude = %v, want file value", cfg.Exclude)
	}
	if len(cfg.DropPairs) != 2 || cfg.DropPairs[1][0] != "fjb" {
		t.Errorf("drop_pairs = %v", cfg.DropPairs)
	}
	// untouched keys keep defaults
	if cfg.Key != "id" || cfg.TopN != 150 {
		t.Errorf("defaults lost: key=%q top_n=%d", cfg.Key, cfg.TopN)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("/nonexistent/run.yaml"); err == nil {
		t.Error("expected error for missing file")
	}

	bad := writeFile(t, "bad.yaml", "inputs: [unterminated")
	if _, err := Load(bad); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("malformed yaml error = %v, want ErrInvalidConfig", err)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero support":    func(c *Config) { c.MinEdgeSupport = 0 },
		"unknown policy":  func(c *Config) { c.Policy = "guess" },
		"long marker":     func(c *Config) { c.Marker = "##" },
		"bad format":      func(c *Config) { c.Format = "parquet" },
		"no field":        func(c *Config) { c.Field = " " },
		"negative top":    func(c *Config) { c.TopN = -1 },
		"negative worker": func(c *Config) { c.Workers = -2 },
		"short pair":      func(c *Config) { c.DropPairs = [][]string{{"solo"}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Defaults()
			mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
