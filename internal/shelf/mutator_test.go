package shelf

import (
	"errors"
	"testing"
	"time"
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestMutator(c Confirmer) *Mutator {
	m := NewMutator(c)
	m.Clock = func() time.Time { return fixedNow }
	return m
}

// dairyFixture has row 1 at 800mm of a 900mm shelf.
func dairyFixture() *Fixture {
	return &Fixture{
		ID:           "G01",
		Rows:         2,
		ShelfWidthMm: 900,
		RowHeights:   map[int]int{1: 280, 2: 300},
		Products: []Product{
			{JAN: "4902720109116", Row: 1, Face: 4, WidthMm: 100, HeightMm: 230, Depth: 4, Cap: 16},
			{JAN: "4902705011625", Row: 1, Face: 2, WidthMm: 100, HeightMm: 255, Depth: 3, Cap: 6},
			{JAN: "4902220113514", Row: 1, Face: 2, WidthMm: 100, HeightMm: 255, Depth: 3, Cap: 6},
			{JAN: "4901777303515", Row: 2, Face: 3, WidthMm: 75, HeightMm: 145, Depth: 4, Cap: 24},
			{JAN: "4902705002012", Row: 2, Face: 2, WidthMm: 65, HeightMm: 145, Depth: 5, Cap: 20},
		},
	}
}

func TestChangeFacing_WithinShelf(t *testing.T) {
	f := dairyFixture()
	m := newTestMutator(NeverConfirm)

	res, err := m.ChangeFacing(f, "4902705011625", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Applied || res.Warning != nil {
		t.Fatalf("expected applied change without warning, got %+v", res)
	}
	p := f.Products[f.Find("4902705011625")]
	if p.Face != 3 {
		t.Errorf("face = %d, want 3", p.Face)
	}
	if p.Cap != 3*3*1 {
		t.Errorf("cap = %d, want %d", p.Cap, 9)
	}
}

func TestChangeFacing_OverflowRequiresConfirmation(t *testing.T) {
	f := dairyFixture()
	f.Products[1].WidthMm = 150 // row 1: 400 + 300 + 200 = 900

	m := newTestMutator(NeverConfirm)
	res, err := m.ChangeFacing(f, "4902720109116", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Warning == nil {
		t.Fatal("expected an overflow warning")
	}
	if res.Warning.RowWidthMm != 1000 || res.Warning.OverMm != 100 {
		t.Errorf("unexpected warning %+v", res.Warning)
	}
	if res.Applied {
		t.Error("expected change to be withheld without confirmation")
	}
	if face := f.Products[0].Face; face != 4 {
		t.Errorf("face changed to %d without confirmation", face)
	}
}

func TestChangeFacing_ScenarioNineFiftyOnNineHundred(t *testing.T) {
	f := &Fixture{
		ID:           "G02",
		Rows:         1,
		ShelfWidthMm: 900,
		Products: []Product{
			{JAN: "x", Row: 1, Face: 3, WidthMm: 50, Depth: 3},
			{JAN: "y", Row: 1, Face: 1, WidthMm: 700, Depth: 3},
		},
	}

	res, err := newTestMutator(NeverConfirm).ChangeFacing(f, "x", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Warning == nil || res.Warning.RowWidthMm != 950 {
		t.Fatalf("expected warning at 950mm, got %+v", res.Warning)
	}
	if f.Products[0].Face != 3 {
		t.Errorf("face = %d, want unchanged 3", f.Products[0].Face)
	}

	res, err = newTestMutator(AlwaysConfirm).ChangeFacing(f, "x", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Applied || f.Products[0].Face != 5 {
		t.Errorf("expected confirmed overflow to apply, got %+v", res)
	}
	if res.Warning == nil {
		t.Error("confirmed result should still carry the warning")
	}
}

func TestChangeFacing_ClampsToMax(t *testing.T) {
	f := dairyFixture()
	res, err := newTestMutator(AlwaysConfirm).ChangeFacing(f, "4902705002012", 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Product.Face != MaxFace {
		t.Errorf("face = %d, want clamp to %d", res.Product.Face, MaxFace)
	}
}

func TestChangeFacing_ZeroEquivalentToDelete(t *testing.T) {
	viaFacing := dairyFixture()
	viaDelete := dairyFixture()
	m := newTestMutator(NeverConfirm)

	res, err := m.ChangeFacing(viaFacing, "4902220113514", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Deleted {
		t.Error("expected Deleted result")
	}
	if _, err := m.DeleteProduct(viaDelete, "4902220113514"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, f := range map[string]*Fixture{"facing": viaFacing, "delete": viaDelete} {
		if f.Find("4902220113514") >= 0 {
			t.Errorf("%s: product still active", name)
		}
		if len(f.Removed) != 1 || f.Removed[0].JAN != "4902220113514" || !f.Removed[0].RemovedAt.Equal(fixedNow) {
			t.Errorf("%s: unexpected removed list %+v", name, f.Removed)
		}
	}
}

func TestChangeFacing_DecreaseOnOverflowingRowNeedsNoConfirmation(t *testing.T) {
	f := dairyFixture()
	f.ShelfWidthMm = 500 // row 1 already at 800mm

	res, err := newTestMutator(NeverConfirm).ChangeFacing(f, "4902720109116", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Applied || res.Warning != nil {
		t.Errorf("expected decrease to apply without warning, got %+v", res)
	}
}

func TestChangeFacing_UnknownJAN(t *testing.T) {
	_, err := newTestMutator(AlwaysConfirm).ChangeFacing(dairyFixture(), "missing", 2)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAndRestore(t *testing.T) {
	f := dairyFixture()
	m := newTestMutator(NeverConfirm)

	if _, err := m.RestoreProduct(f, "4902720109116"); !errors.Is(err, ErrNotFound) {
		t.Errorf("restore of active product: expected ErrNotFound, got %v", err)
	}
	if _, err := m.DeleteProduct(f, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete of unknown product: expected ErrNotFound, got %v", err)
	}

	f.Products[0].Cap = 99 // restore keeps cached values
	if _, err := m.DeleteProduct(f, "4902720109116"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	p, err := m.RestoreProduct(f, "4902720109116")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if p.Row != 1 || p.Face != 4 || p.Cap != 99 {
		t.Errorf("restored product lost its placement: %+v", p)
	}
	if last := f.Products[len(f.Products)-1]; last.JAN != "4902720109116" {
		t.Errorf("restored product should be appended, last is %s", last.JAN)
	}
	if len(f.Removed) != 0 {
		t.Errorf("removed list should be empty, got %d", len(f.Removed))
	}
}

func TestMoveProduct(t *testing.T) {
	tests := []struct {
		name     string
		jan      string
		row      int
		index    int
		expected []string
	}{
		{
			name:  "IntoOtherRowMiddle",
			jan:   "4902720109116",
			row:   2,
			index: 1,
			expected: []string{
				"4902705011625", "4902220113514", "4901777303515", "4902720109116", "4902705002012",
			},
		},
		{
			name:  "PastEndAppendsToRow",
			jan:   "4902705002012",
			row:   1,
			index: 10,
			expected: []string{
				"4902720109116", "4902705011625", "4902220113514", "4902705002012", "4901777303515",
			},
		},
		{
			name:  "WithinRowToFront",
			jan:   "4902220113514",
			row:   1,
			index: 0,
			expected: []string{
				"4902220113514", "4902720109116", "4902705011625", "4901777303515", "4902705002012",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := dairyFixture()
			moved, err := newTestMutator(NeverConfirm).MoveProduct(f, tt.jan, tt.row, tt.index)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if moved.Row != tt.row {
				t.Errorf("row = %d, want %d", moved.Row, tt.row)
			}
			var got []string
			for _, p := range f.Products {
				got = append(got, p.JAN)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Fatalf("order = %v, want %v", got, tt.expected)
				}
			}
			if mm := f.CapacityMismatches(); len(mm) != 0 {
				t.Errorf("stale capacity after move: %+v", mm)
			}
		})
	}
}

func TestMoveProduct_EmptyRowAndValidation(t *testing.T) {
	f := dairyFixture()
	f.Rows = 3
	m := newTestMutator(NeverConfirm)

	moved, err := m.MoveProduct(f, "4902720109116", 3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Products[len(f.Products)-1].JAN != moved.JAN {
		t.Error("move into an empty row should append")
	}
	if moved.Cap != Capacity(4, 4, 230, DefaultRowHeightMm) {
		t.Errorf("cap not recomputed for new row height: %d", moved.Cap)
	}

	var verr *ValidationError
	if _, err := m.MoveProduct(f, "4902720109116", 4, 0); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for row outside fixture, got %v", err)
	}
}

func TestChangeDepthAndRowHeight(t *testing.T) {
	f := dairyFixture()
	m := newTestMutator(NeverConfirm)

	p, err := m.ChangeDepth(f, "4901777303515", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Cap != 3*2*2 {
		t.Errorf("cap = %d, want 12", p.Cap)
	}

	var verr *ValidationError
	if _, err := m.ChangeDepth(f, "4901777303515", 11); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}

	if err := m.SetRowHeight(f, 2, 450); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.Products[f.Find("4901777303515")].Cap; got != 3*2*3 {
		t.Errorf("cap after row height change = %d, want 18", got)
	}
	if len(f.CapacityMismatches()) != 0 {
		t.Error("row height change left stale capacity")
	}
}

func TestStockCorrection(t *testing.T) {
	f := dairyFixture()
	f.Products[0].CurrentStock = 8

	p, err := newTestMutator(NeverConfirm).CorrectStock(f, "4902720109116", -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ApplyStockCorrection(&f.Products[0], 1)

	if p.StockCorrection != -3 {
		t.Errorf("returned correction = %d, want -3", p.StockCorrection)
	}
	if got := f.Products[0].EffectiveStock(); got != 6 {
		t.Errorf("effective stock = %d, want 6", got)
	}
}
