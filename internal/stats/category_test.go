package stats

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"shelf-dcs/internal/shelf"
)

func product(cat string, rate float64) shelf.Product {
	return shelf.Product{CategoryName: cat, DailyAvgQty: rate}
}

func TestBuildCategoryStats(t *testing.T) {
	products := []shelf.Product{
		product("milk", 2.0), product("milk", 0), product("milk", 1.0),
		product("milk", 4.0), product("milk", 3.0), product("milk", 5.0),
		product("juice", 0.5), product("juice", 0.7),
		product("", 1.2),
	}

	got := BuildCategoryStats(products, DefaultOptions())

	p10 := 1.0
	want := map[string]CategoryStats{
		"milk": {
			Count:    6,
			PICount:  5,
			PIValues: []float64{1, 2, 3, 4, 5},
			Median:   3,
			P10:      &p10,
		},
		"juice": {
			Count:    2,
			PICount:  2,
			PIValues: []float64{0.5, 0.7},
			Median:   0.6,
		},
		Uncategorized: {
			Count:    1,
			PICount:  1,
			PIValues: []float64{1.2},
			Median:   1.2,
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildCategoryStats() mismatch (-want +got):\n%s", diff)
	}
	if got["juice"].HasPercentile() {
		t.Error("small category must not carry a percentile")
	}
}

func TestBuildCategoryStats_AllZero(t *testing.T) {
	got := BuildCategoryStats([]shelf.Product{product("tea", 0), product("tea", 0)}, DefaultOptions())
	cs := got["tea"]
	if cs.Count != 2 || cs.PICount != 0 || cs.Median != 0 || cs.P10 != nil {
		t.Errorf("unexpected stats for zero-sales category: %+v", cs)
	}
}

func TestBuildCategoryStats_OrderIndependent(t *testing.T) {
	var products []shelf.Product
	for i := 0; i < 40; i++ {
		cat := []string{"yogurt", "milk", "juice"}[i%3]
		products = append(products, product(cat, float64((i*7)%11)/3))
	}

	base := BuildCategoryStats(products, DefaultOptions())

	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 10; round++ {
		shuffled := append([]shelf.Product(nil), products...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		if diff := cmp.Diff(base, BuildCategoryStats(shuffled, DefaultOptions())); diff != "" {
			t.Fatalf("round %d: statistics depend on input order:\n%s", round, diff)
		}
	}
}
