package stoplist

import (
	"math"
	"testing"
)

func TestManagerBasic(t *testing.T) {
	mgr := NewManager(DefaultExclusions)

	for _, tok := range []string{"none", "true", "false", "nan"} {
		if !mgr.IsStop(tok) {
			t.Errorf("'%s' should be excluded", tok)
		}
	}

	if mgr.IsStop("ukraine") {
		t.Error("'ukraine' should not be excluded")
	}
}

func TestManagerNormalizesConfiguredEntries(t *testing.T) {
	mgr := NewManager([]string{"#RT", " Amp "})

	if !mgr.IsStop("rt") || !mgr.IsStop("amp") {
		t.Errorf("configured entries should be folded, got %v", mgr.All())
	}
}

func TestManagerAdd(t *testing.T) {
	mgr := NewManager([]string{"none"})

	mgr.Add("#Ukraine", Reason{HighDF: true})
	if !mgr.IsStop("ukraine") {
		t.Error("'ukraine' should be excluded after adding")
	}
	if mgr.Len() != 2 {
		t.Errorf("expected 2 exclusions, got %d", mgr.Len())
	}
}

func TestManagerAllSorted(t *testing.T) {
	mgr := NewManager([]string{"nan", "false", "none"})

	all := mgr.All()
	if len(all) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(all))
	}
	if all[0] != "false" || all[1] != "nan" || all[2] != "none" {
		t.Errorf("expected sorted output, got %v", all)
	}
}

func TestNilManager(t *testing.T) {
	var mgr *Manager
	if mgr.IsStop("none") {
		t.Error("nil manager should exclude nothing")
	}
}

func TestSuggestCandidates(t *testing.T) {
	mgr := NewManager(nil)

	stats := []Stats{
		{Token: "ukraine", DFPercent: 85, NPMIMax: 0.02, HasPairs: true},   // candidate
		{Token: "nato", DFPercent: 12, NPMIMax: 0.4, HasPairs: true},       // rare
		{Token: "russia", DFPercent: 60, NPMIMax: 0.05, HasPairs: true},    // candidate
		{Token: "stopputin", DFPercent: 45, NPMIMax: 0.35, HasPairs: true}, // strong partner
	}

	candidates := mgr.SuggestCandidates(stats, DefaultThresholds())

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Token != "ukraine" || candidates[1].Token != "russia" {
		t.Errorf("unexpected order: %v", candidates)
	}
	for _, cand := range candidates {
		if !cand.Reason.HighDF || !cand.Reason.LowNPMI {
			t.Errorf("both criteria should hold for %s", cand.Token)
		}
	}
}

func TestSuggestCandidatesWithoutPairs(t *testing.T) {
	mgr := NewManager(nil)

	stats := []Stats{
		{Token: "ukrainewar", DFPercent: 70, HasPairs: false},
	}

	candidates := mgr.SuggestCandidates(stats, DefaultThresholds())
	if len(candidates) != 1 {
		t.Fatalf("entity with no pairs should count as low NPMI, got %d candidates", len(candidates))
	}
	if math.Abs(candidates[0].Score-0.85) > 1e-9 {
		t.Errorf("unexpected score %f", candidates[0].Score)
	}
}

func TestSuggestCandidatesSkipsExisting(t *testing.T) {
	mgr := NewManager([]string{"ukraine"})

	stats := []Stats{
		{Token: "ukraine", DFPercent: 90, NPMIMax: 0.01, HasPairs: true},
	}

	if got := mgr.SuggestCandidates(stats, DefaultThresholds()); len(got) != 0 {
		t.Error("Should not suggest already excluded entities")
	}
}

func TestPairBlocklist(t *testing.T) {
	bl := NewPairBlocklist([][2]string{
		{"fjb", "letsgobrandon"},
		{"#MAGA", "nra"},
		{"same", "same"},
	})

	if bl.Len() != 2 {
		t.Fatalf("expected 2 blocked pairs, got %d", bl.Len())
	}
	if !bl.Blocks("letsgobrandon", "fjb") {
		t.Error("pair should be blocked regardless of order")
	}
	if !bl.Blocks("maga", "nra") {
		t.Error("configured pair should be normalized")
	}
	if bl.Blocks("maga", "fjb") {
		t.Error("unrelated pair should not be blocked")
	}
	if bl.Blocks("same", "same") {
		t.Error("self pairs are never blocked")
	}
}

func TestNilPairBlocklist(t *testing.T) {
	var bl *PairBlocklist
	if bl.Blocks("a", "b") || bl.Len() != 0 {
		t.Error("nil blocklist should block nothing")
	}
}
