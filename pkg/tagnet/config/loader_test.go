package config

import (
	"testing"

	"github.com/cognicore/tagnet/pkg/tagnet/lexicon"
)

func TestLoaderDefaults(t *testing.T) {
	loader := Loader{Config: Defaults()}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("default loader should succeed: %v", err)
	}
	if comp.Extractor == nil || comp.Stoplist == nil || comp.Pairs == nil {
		t.Fatalf("all components should be constructed: %+v", comp)
	}
	if comp.Lexicon != nil {
		t.Error("no aliases configured, lexicon should be nil")
	}
	if !comp.Stoplist.IsStop("nan") {
		t.Error("default exclusions should be loaded")
	}
	if comp.Pairs.Len() != 0 {
		t.Errorf("expected no blocked pairs, got %d", comp.Pairs.Len())
	}
}

func TestLoaderBuildsExtractor(t *testing.T) {
	cfg := Defaults()
	cfg.Policy = "marker"
	cfg.DropPairs = [][]string{{"FJB", "#LetsGoBrandon"}}
	cfg.Aliases = nil
	cfg.AliasFile = writeFile(t, "aliases.yaml", `
aliases:
  - canonical: standwithukraine
    variants: [istandwithukraine, standwithukrainenow]
`)
	cfg.StoplistFile = writeFile(t, "stop.yaml", "terms: [ukraine]\n")

	comp, err := (&Loader{Config: cfg}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !comp.Pairs.Blocks("fjb", "letsgobrandon") {
		t.Error("configured pair should be normalized and blocked")
	}

	tags := comp.Extractor.Extract("#IStandWithUkraine #Ukraine #Kyiv now")
	got := tags.Sorted()
	want := []string{"kyiv", "standwithukraine"}
	if len(got) != len(want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Extract[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoaderStripsSingleMarker(t *testing.T) {
	tests := []struct {
		name   string
		marker string
		raw    string
		want   []string
	}{
		{"doubled marker keeps one", "#", "['##Ukraine', '#NATO']", []string{"#ukraine", "nato"}},
		{"hash is literal under custom marker", "@", "['@kyiv', '#nato']", []string{"#nato", "kyiv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Marker = tt.marker

			comp, err := (&Loader{Config: cfg}).Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			got := comp.Extractor.Extract(tt.raw).Sorted()
			if len(got) != len(tt.want) {
				t.Fatalf("Extract(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Extract(%q)[%d] = %q, want %q", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoaderInlineAliases(t *testing.T) {
	cfg := Defaults()
	cfg.Aliases = []lexicon.AliasGroup{{Canonical: "kyiv", Variants: []string{"#Kiev"}}}

	comp, err := (&Loader{Config: cfg}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.Lexicon == nil {
		t.Fatal("inline aliases should build a lexicon")
	}

	got := comp.Extractor.Extract("['#Kiev', '##kiev']").Sorted()
	if len(got) != 2 || got[0] != "#kiev" || got[1] != "kyiv" {
		t.Errorf("Extract = %v, want [#kiev kyiv]", got)
	}
}

func TestLoaderMissingFiles(t *testing.T) {
	cfg := Defaults()
	cfg.StoplistFile = "/nonexistent/stop.yaml"
	if _, err := (&Loader{Config: cfg}).Load(); err == nil {
		t.Error("should error on nonexistent stoplist")
	}

	cfg = Defaults()
	cfg.AliasFile = "/nonexistent/aliases.yaml"
	if _, err := (&Loader{Config: cfg}).Load(); err == nil {
		t.Error("should error on nonexistent alias file")
	}
}
