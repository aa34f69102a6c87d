package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"shelf-dcs/internal/shelf"
	"shelf-dcs/internal/visuals"
)

type guideStep struct {
	Step        int    `json:"step"`
	Tool        string `json:"tool"`
	Description string `json:"description"`
}

type guide struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Steps       []guideStep `json:"steps"`
}

var guides = map[string]guide{
	"dcs_review": {
		Title:       "Workflow: DCS Proposal Review",
		Description: "Recommended sequence to review and apply cut and facing recommendations.",
		Steps: []guideStep{
			{1, "list_fixtures", "Check the catalog is loaded and note overflowing rows."},
			{2, "evaluate_dcs", "Generate a fresh proposal batch with an explicitly chosen ruleset."},
			{3, "list_pending_proposals", "Walk the proposals, filtered by action or category if the batch is large."},
			{4, "approve_proposal", "Apply accepted proposals. Confirm overflows with the user before retrying."},
			{5, "reject_proposal", "Record rejections with a reason."},
			{6, "get_row_occupancy", "Verify the affected gondolas still fit."},
		},
	},
	"shelf_edit": {
		Title:       "Workflow: Manual Shelf Editing",
		Description: "Recommended sequence for placement changes outside the DCS batch.",
		Steps: []guideStep{
			{1, "get_fixture", "Inspect products, rows and capacity."},
			{2, "get_row_occupancy", "Find free width before adding facings."},
			{3, "change_facing", "Adjust facings. Overflows need explicit confirmation."},
			{4, "move_product", "Move products between rows."},
			{5, "get_edit_log", "Review what was changed and by whom."},
		},
	},
	"reporting": {
		Title:       "Workflow: Reporting",
		Description: "Recommended sequence to summarise the state of the planogram.",
		Steps: []guideStep{
			{1, "list_fixtures", "Overview of gondolas and overflow."},
			{2, "list_pending_proposals", "Progress of the current DCS batch."},
			{3, "get_edit_log", "Edits per gondola."},
		},
	},
}

func (s *Server) handleGetWorkflowGuide(_ context.Context, _ *sdk.CallToolRequest, in guideInput) (*sdk.CallToolResult, any, error) {
	g, ok := guides[in.Goal]
	if !ok {
		return nil, nil, fmt.Errorf("unknown goal: %s. Available goals: dcs_review, shelf_edit, reporting", in.Goal)
	}
	return s.respond(g)
}

type fixtureSummary struct {
	ID            string `json:"fixtureId"`
	CategoryLabel string `json:"categoryLabel,omitempty"`
	Rows          int    `json:"rows"`
	ShelfWidthMm  int    `json:"shelfWidthMm"`
	Products      int    `json:"products"`
	Removed       int    `json:"removed"`
	OverflowRows  []int  `json:"overflowRows,omitempty"`
}

func (s *Server) handleListFixtures(_ context.Context, _ *sdk.CallToolRequest, _ struct{}) (*sdk.CallToolResult, any, error) {
	snap, err := s.planner.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	out := make([]fixtureSummary, 0, len(snap.Fixtures))
	for _, id := range snap.FixtureIDs() {
		f := snap.Fixtures[id]
		fs := fixtureSummary{
			ID:            id,
			CategoryLabel: f.CategoryLabel,
			Rows:          f.Rows,
			ShelfWidthMm:  f.ShelfWidth(),
			Products:      len(f.Products),
			Removed:       len(f.Removed),
		}
		for _, r := range f.Overflows() {
			fs.OverflowRows = append(fs.OverflowRows, r.Row)
		}
		out = append(out, fs)
	}
	return s.respond(map[string]any{
		"storeCode":  snap.StoreCode,
		"storeName":  snap.StoreName,
		"periodDays": snap.PeriodDays,
		"fixtures":   out,
	})
}

func (s *Server) handleGetFixture(_ context.Context, _ *sdk.CallToolRequest, in fixtureInput) (*sdk.CallToolResult, any, error) {
	if err := required("fixture_id", in.FixtureID); err != nil {
		return nil, nil, err
	}
	snap, err := s.planner.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	f, err := snap.Fixture(in.FixtureID)
	if err != nil {
		return nil, nil, err
	}
	return s.respond(struct {
		*shelf.Fixture
		CapacityMismatches []shelf.CapacityMismatch `json:"capacityMismatches,omitempty"`
	}{f, f.CapacityMismatches()}, visuals.GenerateOccupancyChart(f.ID, f.Occupancy()))
}

func (s *Server) handleGetProduct(_ context.Context, _ *sdk.CallToolRequest, in productInput) (*sdk.CallToolResult, any, error) {
	if err := productArgs(in.FixtureID, in.JAN); err != nil {
		return nil, nil, err
	}
	snap, err := s.planner.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	f, err := snap.Fixture(in.FixtureID)
	if err != nil {
		return nil, nil, err
	}
	i := f.Find(in.JAN)
	if i < 0 {
		return nil, nil, fmt.Errorf("product %s not found on fixture %s", in.JAN, in.FixtureID)
	}
	p := f.Products[i]
	return s.respond(map[string]any{
		"fixtureId":      f.ID,
		"product":        p,
		"expectedCap":    f.ExpectedCap(p),
		"effectiveStock": p.EffectiveStock(),
	}, visuals.GenerateWeeklySalesChart(p))
}

func (s *Server) handleRowOccupancy(_ context.Context, _ *sdk.CallToolRequest, in fixtureInput) (*sdk.CallToolResult, any, error) {
	if err := required("fixture_id", in.FixtureID); err != nil {
		return nil, nil, err
	}
	occ, err := s.planner.RowOccupancy(in.FixtureID)
	if err != nil {
		return nil, nil, err
	}
	return s.respond(map[string]any{"fixtureId": in.FixtureID, "rows": occ}, visuals.GenerateOccupancyChart(in.FixtureID, occ))
}

func (s *Server) handleEditLog(ctx context.Context, _ *sdk.CallToolRequest, in editLogInput) (*sdk.CallToolResult, any, error) {
	if err := required("fixture_id", in.FixtureID); err != nil {
		return nil, nil, err
	}
	edits, err := s.planner.Edits(ctx, in.FixtureID, in.Limit)
	if err != nil {
		return nil, nil, err
	}
	return s.respond(map[string]any{"fixtureId": in.FixtureID, "edits": edits})
}
