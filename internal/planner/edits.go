package planner

import (
	"context"

	"shelf-dcs/internal/shelf"
)

// Edit actions recorded in the shelf edit log.
const (
	EditFacing    = "facing"
	EditDelete    = "delete"
	EditRestore   = "restore"
	EditMove      = "move"
	EditDepth     = "depth"
	EditRowHeight = "rowHeight"
	EditStock     = "stockCorrection"
	EditApprove   = "dcsApprove"
)

// ChangeFacing sets a product's facing count. An overflowing increase is
// applied only if confirm accepts it; nil confirm never accepts.
func (s *Service) ChangeFacing(ctx context.Context, fixtureID, jan string, newFace int, confirm shelf.Confirmer, actor string) (shelf.FacingResult, error) {
	var res shelf.FacingResult
	err := s.mutate(ctx, fixtureID, actor, EditFacing, func(f *shelf.Fixture) (any, bool, error) {
		idx := f.Find(jan)
		var oldFace int
		if idx >= 0 {
			oldFace = f.Products[idx].Face
		}
		var err error
		res, err = shelf.NewMutator(confirm).ChangeFacing(f, jan, newFace)
		if err != nil {
			return nil, false, err
		}
		return map[string]any{"jan": jan, "from": oldFace, "to": res.Product.Face, "deleted": res.Deleted}, res.Applied, nil
	})
	return res, err
}

// DeleteProduct cuts a product from its fixture.
func (s *Service) DeleteProduct(ctx context.Context, fixtureID, jan, actor string) (shelf.RemovedProduct, error) {
	var removed shelf.RemovedProduct
	err := s.mutate(ctx, fixtureID, actor, EditDelete, func(f *shelf.Fixture) (any, bool, error) {
		var err error
		removed, err = shelf.NewMutator(nil).DeleteProduct(f, jan)
		return map[string]any{"jan": jan}, err == nil, err
	})
	return removed, err
}

// RestoreProduct moves a cut product back onto its fixture.
func (s *Service) RestoreProduct(ctx context.Context, fixtureID, jan, actor string) (shelf.Product, error) {
	var p shelf.Product
	err := s.mutate(ctx, fixtureID, actor, EditRestore, func(f *shelf.Fixture) (any, bool, error) {
		var err error
		p, err = shelf.NewMutator(nil).RestoreProduct(f, jan)
		return map[string]any{"jan": jan}, err == nil, err
	})
	return p, err
}

// MoveProduct places a product at an index within a target row.
func (s *Service) MoveProduct(ctx context.Context, fixtureID, jan string, row, index int, actor string) (shelf.Product, error) {
	var p shelf.Product
	err := s.mutate(ctx, fixtureID, actor, EditMove, func(f *shelf.Fixture) (any, bool, error) {
		var err error
		p, err = shelf.NewMutator(nil).MoveProduct(f, jan, row, index)
		return map[string]any{"jan": jan, "row": row, "index": index}, err == nil, err
	})
	return p, err
}

// ChangeDepth sets the front-to-back unit count of a product.
func (s *Service) ChangeDepth(ctx context.Context, fixtureID, jan string, depth int, actor string) (shelf.Product, error) {
	var p shelf.Product
	err := s.mutate(ctx, fixtureID, actor, EditDepth, func(f *shelf.Fixture) (any, bool, error) {
		var err error
		p, err = shelf.NewMutator(nil).ChangeDepth(f, jan, depth)
		return map[string]any{"jan": jan, "depth": depth}, err == nil, err
	})
	return p, err
}

// SetRowHeight changes a shelf level's height and recomputes caps in it.
func (s *Service) SetRowHeight(ctx context.Context, fixtureID string, row, heightMm int, actor string) error {
	return s.mutate(ctx, fixtureID, actor, EditRowHeight, func(f *shelf.Fixture) (any, bool, error) {
		err := shelf.NewMutator(nil).SetRowHeight(f, row, heightMm)
		return map[string]any{"row": row, "heightMm": heightMm}, err == nil, err
	})
}

// CorrectStock adds a manual correction to a product's displayed stock.
func (s *Service) CorrectStock(ctx context.Context, fixtureID, jan string, delta int, actor string) (shelf.Product, error) {
	var p shelf.Product
	err := s.mutate(ctx, fixtureID, actor, EditStock, func(f *shelf.Fixture) (any, bool, error) {
		var err error
		p, err = shelf.NewMutator(nil).CorrectStock(f, jan, delta)
		return map[string]any{"jan": jan, "delta": delta}, err == nil, err
	})
	return p, err
}
