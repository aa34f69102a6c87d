package shelf

import (
	"fmt"
	"time"
)

// OverflowWarning signals that a facing increase would push a row past the
// shelf width. It is a policy signal, not an error.
type OverflowWarning struct {
	FixtureID    string `json:"fixtureId"`
	JAN          string `json:"jan"`
	Row          int    `json:"row"`
	RowWidthMm   int    `json:"rowWidthMm"`
	ShelfWidthMm int    `json:"shelfWidthMm"`
	OverMm       int    `json:"overMm"`
}

func (w OverflowWarning) String() string {
	return fmt.Sprintf("row %d of fixture %s would exceed shelf width by %dmm (%dmm / %dmm)",
		w.Row, w.FixtureID, w.OverMm, w.RowWidthMm, w.ShelfWidthMm)
}

// Confirmer decides whether an overflowing facing change may proceed.
type Confirmer interface {
	ConfirmOverflow(w OverflowWarning) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(w OverflowWarning) bool

func (f ConfirmFunc) ConfirmOverflow(w OverflowWarning) bool { return f(w) }

var (
	AlwaysConfirm Confirmer = ConfirmFunc(func(OverflowWarning) bool { return true })
	NeverConfirm  Confirmer = ConfirmFunc(func(OverflowWarning) bool { return false })
)

// FacingPlan is the first phase of a facing change: what would happen, and
// whether it needs operator confirmation.
type FacingPlan struct {
	FixtureID string           `json:"fixtureId"`
	JAN       string           `json:"jan"`
	OldFace   int              `json:"oldFace"`
	NewFace   int              `json:"newFace"`
	Delete    bool             `json:"delete"`
	Warning   *OverflowWarning `json:"warning,omitempty"`
}

// FacingResult is the outcome of ChangeFacing.
type FacingResult struct {
	Product Product          `json:"product"`
	Applied bool             `json:"applied"`
	Deleted bool             `json:"deleted"`
	Warning *OverflowWarning `json:"overflowWarning,omitempty"`
}

// Mutator applies placement edits to a fixture. Callers must serialize
// mutations of the same fixture.
type Mutator struct {
	Confirm Confirmer
	Clock   func() time.Time
}

// NewMutator returns a mutator with the given overflow policy.
func NewMutator(confirm Confirmer) *Mutator {
	return &Mutator{Confirm: confirm, Clock: time.Now}
}

func (m *Mutator) now() time.Time {
	if m.Clock == nil {
		return time.Now()
	}
	return m.Clock()
}

func (m *Mutator) confirmer() Confirmer {
	if m.Confirm == nil {
		return NeverConfirm
	}
	return m.Confirm
}

// PlanFacing computes the effect of setting a product's facing without mutating anything.
// Only increases are checked for overflow: a decrease on a row that already
// overflows never needs confirmation.
func PlanFacing(f *Fixture, jan string, newFace int) (FacingPlan, error) {
	idx := f.Find(jan)
	if idx < 0 {
		return FacingPlan{}, notFound(f.ID, jan, "active")
	}
	p := f.Products[idx]
	plan := FacingPlan{FixtureID: f.ID, JAN: jan, OldFace: p.Face}

	if newFace <= 0 {
		plan.Delete = true
		return plan, nil
	}
	plan.NewFace = min(newFace, MaxFace)

	if plan.NewFace > p.Face {
		current := RowOccupiedWidth(f.Products, p.Row)
		hypothetical := current + (plan.NewFace-p.Face)*p.EffectiveWidthMm()
		if shelf := f.ShelfWidth(); hypothetical > shelf {
			plan.Warning = &OverflowWarning{
				FixtureID:    f.ID,
				JAN:          jan,
				Row:          p.Row,
				RowWidthMm:   hypothetical,
				ShelfWidthMm: shelf,
				OverMm:       hypothetical - shelf,
			}
		}
	}
	return plan, nil
}

// CommitFacing applies a plan produced by PlanFacing.
func (m *Mutator) CommitFacing(f *Fixture, plan FacingPlan) (FacingResult, error) {
	if plan.Delete {
		removed, err := m.DeleteProduct(f, plan.JAN)
		if err != nil {
			return FacingResult{}, err
		}
		return FacingResult{Product: removed.Product, Applied: true, Deleted: true}, nil
	}

	idx := f.Find(plan.JAN)
	if idx < 0 {
		return FacingResult{}, notFound(f.ID, plan.JAN, "active")
	}
	p := &f.Products[idx]
	p.Face = plan.NewFace
	p.Cap = f.ExpectedCap(*p)
	return FacingResult{Product: *p, Applied: true, Warning: plan.Warning}, nil
}

// ChangeFacing sets the facing count of a product. A count of zero or less
// deletes it. An increase beyond the shelf width proceeds only if the
// mutator's Confirmer accepts the warning; otherwise the product is unchanged.
func (m *Mutator) ChangeFacing(f *Fixture, jan string, newFace int) (FacingResult, error) {
	plan, err := PlanFacing(f, jan, newFace)
	if err != nil {
		return FacingResult{}, err
	}
	if plan.Warning != nil && !m.confirmer().ConfirmOverflow(*plan.Warning) {
		return FacingResult{Product: f.Products[f.Find(jan)], Warning: plan.Warning}, nil
	}
	return m.CommitFacing(f, plan)
}

// DeleteProduct moves a product from the active list to the removed list.
func (m *Mutator) DeleteProduct(f *Fixture, jan string) (RemovedProduct, error) {
	idx := f.Find(jan)
	if idx < 0 {
		return RemovedProduct{}, notFound(f.ID, jan, "active")
	}
	removed := RemovedProduct{Product: f.Products[idx], RemovedAt: m.now()}
	f.Products = append(f.Products[:idx], f.Products[idx+1:]...)
	f.Removed = append(f.Removed, removed)
	return removed, nil
}

// RestoreProduct returns a removed product to the end of the active list with
// its previous row, order and facing.
func (m *Mutator) RestoreProduct(f *Fixture, jan string) (Product, error) {
	idx := f.findRemoved(jan)
	if idx < 0 {
		return Product{}, notFound(f.ID, jan, "removed")
	}
	if f.Find(jan) >= 0 {
		return Product{}, &ValidationError{Field: "jan", Reason: fmt.Sprintf("%s is already on the shelf", jan)}
	}
	p := f.Removed[idx].Product
	f.Removed = append(f.Removed[:idx], f.Removed[idx+1:]...)
	f.Products = append(f.Products, p)
	return p, nil
}

// MoveProduct moves a product to targetRow and inserts it before the product
// currently at targetIndex within that row. An index past the end appends to the row.
func (m *Mutator) MoveProduct(f *Fixture, jan string, targetRow, targetIndex int) (Product, error) {
	if targetRow < 1 || (f.Rows > 0 && targetRow > f.Rows) {
		return Product{}, &ValidationError{Field: "row", Reason: fmt.Sprintf("%d is outside 1..%d", targetRow, f.Rows)}
	}
	idx := f.Find(jan)
	if idx < 0 {
		return Product{}, notFound(f.ID, jan, "active")
	}
	targetIndex = max(0, targetIndex)

	moved := f.Products[idx]
	rest := make([]Product, 0, len(f.Products))
	rest = append(rest, f.Products[:idx]...)
	rest = append(rest, f.Products[idx+1:]...)

	moved.Row = targetRow
	moved.Cap = f.ExpectedCap(moved)

	var rowPositions []int
	for i, p := range rest {
		if p.Row == targetRow {
			rowPositions = append(rowPositions, i)
		}
	}

	insertAt := len(rest)
	switch {
	case targetIndex < len(rowPositions):
		insertAt = rowPositions[targetIndex]
	case len(rowPositions) > 0:
		insertAt = rowPositions[len(rowPositions)-1] + 1
	}

	out := make([]Product, 0, len(f.Products))
	out = append(out, rest[:insertAt]...)
	out = append(out, moved)
	out = append(out, rest[insertAt:]...)
	f.Products = out
	return moved, nil
}

// ChangeDepth sets how many units stand front-to-back and refreshes cap.
func (m *Mutator) ChangeDepth(f *Fixture, jan string, depth int) (Product, error) {
	if depth < 1 || depth > MaxDepth {
		return Product{}, &ValidationError{Field: "depth", Reason: fmt.Sprintf("%d is outside 1..%d", depth, MaxDepth)}
	}
	idx := f.Find(jan)
	if idx < 0 {
		return Product{}, notFound(f.ID, jan, "active")
	}
	p := &f.Products[idx]
	p.Depth = depth
	p.Cap = f.ExpectedCap(*p)
	return *p, nil
}

// SetRowHeight changes a shelf level's height and refreshes cap for every product on it.
func (m *Mutator) SetRowHeight(f *Fixture, row, heightMm int) error {
	if row < 1 {
		return &ValidationError{Field: "row", Reason: fmt.Sprintf("%d must be positive", row)}
	}
	if heightMm <= 0 {
		return &ValidationError{Field: "heightMm", Reason: fmt.Sprintf("%d must be positive", heightMm)}
	}
	if f.RowHeights == nil {
		f.RowHeights = make(map[int]int)
	}
	f.RowHeights[row] = heightMm
	for i := range f.Products {
		if f.Products[i].Row == row {
			f.Products[i].Cap = f.ExpectedCap(f.Products[i])
		}
	}
	return nil
}

// CorrectStock applies a stock correction to a product in the fixture.
func (m *Mutator) CorrectStock(f *Fixture, jan string, delta int) (Product, error) {
	idx := f.Find(jan)
	if idx < 0 {
		return Product{}, notFound(f.ID, jan, "active")
	}
	ApplyStockCorrection(&f.Products[idx], delta)
	return f.Products[idx], nil
}

// ApplyStockCorrection annotates a product with a manual stock adjustment.
func ApplyStockCorrection(p *Product, delta int) {
	p.StockCorrection += delta
}
