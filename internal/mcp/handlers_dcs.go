package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"shelf-dcs/internal/catalog"
	"shelf-dcs/internal/dcs"
	"shelf-dcs/internal/ledger"
	"shelf-dcs/internal/visuals"
)

type evaluateResult struct {
	Ruleset    string         `json:"ruleset"`
	PeriodDays int            `json:"periodDays"`
	Summary    dcs.Summary    `json:"summary"`
	Candidates int            `json:"candidates"`
	Proposals  []dcs.Proposal `json:"proposals"`
	Insights   []string       `json:"insights,omitempty"`
}

func (s *Server) handleEvaluate(ctx context.Context, _ *sdk.CallToolRequest, in evaluateInput) (*sdk.CallToolResult, any, error) {
	path := in.CandidatesFile
	if path == "" {
		path = s.opts.CandidatesFile
	}
	var candidates []dcs.Candidate
	if path != "" {
		var err error
		if candidates, err = catalog.LoadCandidates(path); err != nil {
			return nil, nil, err
		}
	}

	ev, err := s.planner.Evaluate(ctx, in.Ruleset, candidates)
	if err != nil {
		return nil, nil, err
	}

	res := evaluateResult{
		Ruleset:    ev.Ruleset,
		PeriodDays: ev.PeriodDays,
		Summary:    ev.Summary,
		Candidates: len(candidates),
		Proposals:  ev.Proposals.Sorted(),
		Insights:   []string{"Previous approve/reject decisions were cleared; every proposal is pending."},
	}
	if ev.Summary.Total == 0 {
		res.Insights = append(res.Insights, "No proposals: every product is within the ruleset's thresholds.")
	}
	return s.respond(res, visuals.GenerateProposalPie(ev.Summary), visuals.GenerateRuleChart(ev.Summary))
}

func (s *Server) handleListPending(_ context.Context, _ *sdk.CallToolRequest, in pendingInput) (*sdk.CallToolResult, any, error) {
	view, err := s.planner.Pending(ledger.Filter{
		Action:   dcs.Action(in.Action),
		Category: in.Category,
		MinPI:    in.MinPI,
	})
	if err != nil {
		return nil, nil, err
	}
	return s.respond(view)
}

func (s *Server) handleApprove(ctx context.Context, _ *sdk.CallToolRequest, in approveInput) (*sdk.CallToolResult, any, error) {
	if err := required("jan", in.JAN); err != nil {
		return nil, nil, err
	}
	d, err := s.planner.Approve(ctx, in.FixtureID, in.JAN, in.Actor, confirmer(in.ConfirmOverflow))
	if err != nil {
		return nil, nil, err
	}
	out := map[string]any{"decision": d, "applied": d.Entry != nil}
	if d.Facing != nil && !d.Facing.Applied {
		out["note"] = overflowNote(d.Facing.Warning)
	}
	return s.respond(out)
}

func (s *Server) handleReject(ctx context.Context, _ *sdk.CallToolRequest, in rejectInput) (*sdk.CallToolResult, any, error) {
	if err := required("jan", in.JAN); err != nil {
		return nil, nil, err
	}
	d, err := s.planner.Reject(ctx, in.FixtureID, in.JAN, in.Actor, in.Reason)
	if err != nil {
		return nil, nil, err
	}
	return s.respond(map[string]any{"decision": d})
}
