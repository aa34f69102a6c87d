package engine

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"shelf-dcs/internal/catalog"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := GeneratorConfig{Scenario: "mild", Distribution: "weibull", Fixtures: 3, Seed: 42}
	a, b := Generate(cfg), Generate(cfg)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed produced different catalogs (-a +b):\n%s", diff)
	}
	if len(a.Fixtures) != 3 {
		t.Fatalf("expected 3 fixtures, got %d", len(a.Fixtures))
	}
}

func TestGenerate_Scenarios(t *testing.T) {
	mild := Generate(GeneratorConfig{Scenario: "mild", Fixtures: 4, Seed: 7})
	for id, f := range mild.Fixtures {
		if o := f.Overflows(); len(o) != 0 {
			t.Errorf("mild fixture %s has overflowing rows %v", id, o)
		}
	}

	crowded := Generate(GeneratorConfig{Scenario: "crowded", Fixtures: 4, Seed: 7})
	overflowing := 0
	for _, f := range crowded.Fixtures {
		overflowing += len(f.Overflows())
	}
	if overflowing == 0 {
		t.Error("crowded scenario produced no overflowing rows")
	}
}

func TestSave_RoundTripsThroughImport(t *testing.T) {
	dir := t.TempDir()
	snap := Generate(GeneratorConfig{Scenario: "skewed", Fixtures: 2, Seed: 3})
	if err := Save(dir, snap, Candidates(3, 2)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := catalog.Load(filepath.Join(dir, "catalog.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ProductCount() != snap.ProductCount() {
		t.Errorf("expected %d products, got %d", snap.ProductCount(), loaded.ProductCount())
	}

	cands, err := catalog.LoadCandidates(filepath.Join(dir, "candidates.csv"))
	if err != nil {
		t.Fatalf("LoadCandidates failed: %v", err)
	}
	if len(cands) != 2*len(categories) {
		t.Errorf("expected %d candidates, got %d", 2*len(categories), len(cands))
	}
}
