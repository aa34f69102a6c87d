package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func productArgs(fixtureID, jan string) error {
	if err := required("fixture_id", fixtureID); err != nil {
		return err
	}
	return required("jan", jan)
}

func (s *Server) handleChangeFacing(ctx context.Context, _ *sdk.CallToolRequest, in facingInput) (*sdk.CallToolResult, any, error) {
	if err := productArgs(in.FixtureID, in.JAN); err != nil {
		return nil, nil, err
	}
	res, err := s.planner.ChangeFacing(ctx, in.FixtureID, in.JAN, in.Face, confirmer(in.ConfirmOverflow), in.Actor)
	if err != nil {
		return nil, nil, err
	}
	out := map[string]any{"result": res}
	if !res.Applied {
		out["note"] = overflowNote(res.Warning)
	}
	return s.respond(out)
}

func (s *Server) handleDeleteProduct(ctx context.Context, _ *sdk.CallToolRequest, in productInput) (*sdk.CallToolResult, any, error) {
	if err := productArgs(in.FixtureID, in.JAN); err != nil {
		return nil, nil, err
	}
	removed, err := s.planner.DeleteProduct(ctx, in.FixtureID, in.JAN, in.Actor)
	if err != nil {
		return nil, nil, err
	}
	return s.respond(map[string]any{"removed": removed})
}

func (s *Server) handleRestoreProduct(ctx context.Context, _ *sdk.CallToolRequest, in productInput) (*sdk.CallToolResult, any, error) {
	if err := productArgs(in.FixtureID, in.JAN); err != nil {
		return nil, nil, err
	}
	p, err := s.planner.RestoreProduct(ctx, in.FixtureID, in.JAN, in.Actor)
	if err != nil {
		return nil, nil, err
	}
	return s.respond(map[string]any{"restored": p})
}

func (s *Server) handleMoveProduct(ctx context.Context, _ *sdk.CallToolRequest, in moveInput) (*sdk.CallToolResult, any, error) {
	if err := productArgs(in.FixtureID, in.JAN); err != nil {
		return nil, nil, err
	}
	p, err := s.planner.MoveProduct(ctx, in.FixtureID, in.JAN, in.Row, in.Index, in.Actor)
	if err != nil {
		return nil, nil, err
	}
	return s.respond(map[string]any{"product": p})
}

func (s *Server) handleChangeDepth(ctx context.Context, _ *sdk.CallToolRequest, in depthInput) (*sdk.CallToolResult, any, error) {
	if err := productArgs(in.FixtureID, in.JAN); err != nil {
		return nil, nil, err
	}
	p, err := s.planner.ChangeDepth(ctx, in.FixtureID, in.JAN, in.Depth, in.Actor)
	if err != nil {
		return nil, nil, err
	}
	return s.respond(map[string]any{"product": p})
}

func (s *Server) handleSetRowHeight(ctx context.Context, _ *sdk.CallToolRequest, in rowHeightInput) (*sdk.CallToolResult, any, error) {
	if err := required("fixture_id", in.FixtureID); err != nil {
		return nil, nil, err
	}
	if err := s.planner.SetRowHeight(ctx, in.FixtureID, in.Row, in.HeightMm, in.Actor); err != nil {
		return nil, nil, err
	}
	occ, err := s.planner.RowOccupancy(in.FixtureID)
	if err != nil {
		return nil, nil, err
	}
	return s.respond(map[string]any{"fixtureId": in.FixtureID, "rows": occ})
}

func (s *Server) handleCorrectStock(ctx context.Context, _ *sdk.CallToolRequest, in stockInput) (*sdk.CallToolResult, any, error) {
	if err := productArgs(in.FixtureID, in.JAN); err != nil {
		return nil, nil, err
	}
	p, err := s.planner.CorrectStock(ctx, in.FixtureID, in.JAN, in.Delta, in.Actor)
	if err != nil {
		return nil, nil, err
	}
	return s.respond(map[string]any{"product": p, "effectiveStock": p.EffectiveStock()})
}
