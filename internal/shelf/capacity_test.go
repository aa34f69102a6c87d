package shelf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMaxStack(t *testing.T) {
	tests := []struct {
		name      string
		height    int
		rowHeight int
		expected  int
	}{
		{"ExactFit", 100, 300, 3},
		{"FloorsPartialUnit", 145, 300, 2},
		{"TallerThanRow", 310, 300, 1},
		{"ZeroHeight", 0, 300, 1},
		{"ZeroRowHeight", 200, 0, 1},
		{"NegativeHeight", -5, 300, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxStack(tt.height, tt.rowHeight); got != tt.expected {
				t.Errorf("MaxStack(%d, %d) = %d, want %d", tt.height, tt.rowHeight, got, tt.expected)
			}
		})
	}
}

func TestMaxStack_NeverBelowOne(t *testing.T) {
	for h := 1; h <= 400; h += 13 {
		for rh := 1; rh <= 400; rh += 17 {
			if got := MaxStack(h, rh); got < 1 {
				t.Fatalf("MaxStack(%d, %d) = %d, want >= 1", h, rh, got)
			}
		}
	}
}

func TestCapacity_MatchesDirectComputation(t *testing.T) {
	for face := 0; face <= 6; face++ {
		for depth := 1; depth <= 5; depth++ {
			for _, dims := range [][2]int{{95, 280}, {255, 300}, {145, 320}, {310, 280}} {
				want := face * depth * MaxStack(dims[0], dims[1])
				if got := Capacity(face, depth, dims[0], dims[1]); got != want {
					t.Errorf("Capacity(%d, %d, %d, %d) = %d, want %d", face, depth, dims[0], dims[1], got, want)
				}
			}
		}
	}
}

func TestRowFreeSpace_PlusOccupiedIsShelfWidth(t *testing.T) {
	products := []Product{
		{JAN: "a", Row: 1, Face: 4, WidthMm: 75},
		{JAN: "b", Row: 1, Face: 3, WidthMm: 75},
		{JAN: "c", Row: 1, Face: 5, WidthMm: 100},
		{JAN: "d", Row: 2, Face: 1},
	}

	for _, row := range []int{1, 2, 3} {
		occupied := RowOccupiedWidth(products, row)
		free := RowFreeSpace(products, row, 900)
		if occupied+free != 900 {
			t.Errorf("row %d: occupied %d + free %d != 900", row, occupied, free)
		}
	}

	if free := RowFreeSpace(products, 1, 900); free != -125 {
		t.Errorf("expected row 1 to overflow by 125mm, got free=%d", free)
	}
	if occ := RowOccupiedWidth(products, 2); occ != DefaultWidthMm {
		t.Errorf("expected unknown width to default to %d, got %d", DefaultWidthMm, occ)
	}
}

func TestFixture_Occupancy(t *testing.T) {
	f := &Fixture{
		ID:           "G01",
		Rows:         2,
		ShelfWidthMm: 300,
		RowHeights:   map[int]int{1: 280},
		Products: []Product{
			{JAN: "a", Row: 1, Face: 2, WidthMm: 100},
			{JAN: "b", Row: 2, Face: 4, WidthMm: 100},
		},
	}

	want := []RowOccupancy{
		{Row: 1, HeightMm: 280, OccupiedMm: 200, FreeMm: 100, ShelfWidthMm: 300, Products: 1},
		{Row: 2, HeightMm: DefaultRowHeightMm, OccupiedMm: 400, FreeMm: -100, ShelfWidthMm: 300, Products: 1, Overflow: true},
	}
	if diff := cmp.Diff(want, f.Occupancy()); diff != "" {
		t.Errorf("Occupancy() mismatch (-want +got):\n%s", diff)
	}
	if got := f.Overflows(); len(got) != 1 || got[0].Row != 2 {
		t.Errorf("expected only row 2 to overflow, got %+v", got)
	}
}

func TestFixture_CapacityMismatches(t *testing.T) {
	f := &Fixture{
		ID:         "G01",
		RowHeights: map[int]int{1: 280},
		Products: []Product{
			{JAN: "ok", Row: 1, Face: 4, HeightMm: 230, Depth: 4, Cap: 16},
			{JAN: "stale", Row: 1, Face: 2, HeightMm: 95, Depth: 5, Cap: 3},
		},
	}

	got := f.CapacityMismatches()
	want := []CapacityMismatch{{JAN: "stale", Cached: 3, Expected: 20}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CapacityMismatches() mismatch (-want +got):\n%s", diff)
	}

	if n := f.RecomputeCapacity(); n != 1 {
		t.Errorf("RecomputeCapacity() changed %d products, want 1", n)
	}
	if len(f.CapacityMismatches()) != 0 {
		t.Error("expected no mismatches after recompute")
	}
}
