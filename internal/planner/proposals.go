package planner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"shelf-dcs/internal/dcs"
	"shelf-dcs/internal/ledger"
	"shelf-dcs/internal/shelf"
)

// Evaluate runs the selected ruleset over the current catalog, matches the
// optional candidates and stores the result as the new proposal batch. An
// empty ruleset falls back to the configured one. The decision ledger is
// reset because decisions never carry across batches.
func (s *Service) Evaluate(ctx context.Context, ruleset string, candidates []dcs.Candidate) (dcs.Evaluation, error) {
	if ruleset == "" {
		ruleset = s.opts.Ruleset
	}
	classifier, err := dcs.NewClassifier(ruleset, s.opts.Params)
	if err != nil {
		return dcs.Evaluation{}, err
	}

	snap, err := s.Snapshot()
	if err != nil {
		return dcs.Evaluation{}, err
	}
	periodDays := snap.PeriodDays
	if periodDays <= 0 {
		periodDays = s.opts.PeriodDays
	}

	ev := dcs.NewEngine(classifier, s.opts.Params).Evaluate(snap.Fixtures, periodDays)
	ev.Proposals = dcs.MatchCandidates(candidates, ev.Proposals, snap.Fixtures)

	if err := s.ImportProposals(ctx, ev); err != nil {
		return ev, err
	}

	log.Info().
		Str("ruleset", ev.Ruleset).
		Int("proposals", ev.Summary.Total).
		Int("cut", ev.Summary.Cut).
		Int("faceReduce", ev.Summary.FaceReduce).
		Int("faceIncrease", ev.Summary.FaceIncrease).
		Int("candidates", len(candidates)).
		Msg("DCS evaluation complete")
	return ev, nil
}

// ImportProposals stores a proposal batch and clears the decision ledger.
func (s *Service) ImportProposals(_ context.Context, ev dcs.Evaluation) error {
	s.decisionMu.Lock()
	defer s.decisionMu.Unlock()

	if err := dcs.SaveEvaluation(s.opts.EvaluationPath, ev); err != nil {
		return err
	}
	if err := s.decisions.Reset(); err != nil {
		return fmt.Errorf("failed to reset decision ledger: %w", err)
	}
	return nil
}

// Evaluation returns the stored proposal batch.
func (s *Service) Evaluation() (dcs.Evaluation, error) {
	return dcs.LoadEvaluation(s.opts.EvaluationPath)
}

// PendingView is the buyer's work queue.
type PendingView struct {
	Proposals []dcs.Proposal `json:"proposals"`
	Summary   ledger.Summary `json:"summary"`
	Ruleset   string         `json:"ruleset"`
	Filter    ledger.Filter  `json:"filter"`
	Stats     *dcs.Summary   `json:"stats,omitempty"`
}

// Pending lists undecided proposals matching the filter.
func (s *Service) Pending(filter ledger.Filter) (PendingView, error) {
	ev, err := s.Evaluation()
	if err != nil {
		return PendingView{}, err
	}
	l, err := s.decisions.Load()
	if err != nil {
		return PendingView{}, err
	}
	return PendingView{
		Proposals: ledger.PendingFiltered(ev.Proposals, l, filter).Sorted(),
		Summary:   ledger.Summarize(ev.Proposals, l),
		Ruleset:   ev.Ruleset,
		Filter:    filter,
		Stats:     &ev.Summary,
	}, nil
}

// resolve finds the proposal for a JAN. The fixture id may be omitted when
// the JAN has a proposal on only one fixture.
func resolve(ev dcs.Evaluation, fixtureID, jan string) (dcs.Proposal, error) {
	if fixtureID != "" {
		p, ok := ev.Proposals[dcs.Key{FixtureID: fixtureID, JAN: jan}]
		if !ok {
			return dcs.Proposal{}, fmt.Errorf("proposal %s_%s: %w", fixtureID, jan, shelf.ErrNotFound)
		}
		return p, nil
	}

	var found []dcs.Proposal
	for _, p := range ev.Proposals {
		if p.JAN == jan {
			found = append(found, p)
		}
	}
	switch len(found) {
	case 0:
		return dcs.Proposal{}, fmt.Errorf("proposal for %s: %w", jan, shelf.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return dcs.Proposal{}, &shelf.ValidationError{Field: "fixtureId", Reason: fmt.Sprintf("JAN %s has proposals on %d fixtures; specify the fixture", jan, len(found))}
	}
}

// Decision is the outcome of approving or rejecting a proposal.
type Decision struct {
	Proposal dcs.Proposal          `json:"proposal"`
	Entry    *ledger.Entry         `json:"entry,omitempty"`
	Facing   *shelf.FacingResult   `json:"facing,omitempty"`
	Removed  *shelf.RemovedProduct `json:"removed,omitempty"`
}

// Approve records an approval and applies it to the shelf: cuts delete the
// product, facing proposals set the absolute target facing resolved against
// the current facing. If the change would overflow the shelf and confirm
// declines, nothing is applied or recorded.
func (s *Service) Approve(ctx context.Context, fixtureID, jan, actor string, confirm shelf.Confirmer) (Decision, error) {
	s.decisionMu.Lock()
	defer s.decisionMu.Unlock()

	ev, l, p, err := s.pendingProposal(fixtureID, jan)
	if err != nil {
		return Decision{}, err
	}
	d := Decision{Proposal: p}
	approval := ledger.Entry{JAN: p.JAN, FixtureID: p.FixtureID, Action: p.Action, Decision: ledger.Approved, Actor: actor}

	err = s.mutateThen(ctx, p.FixtureID, actor, EditApprove, func(f *shelf.Fixture) (any, bool, error) {
		m := shelf.NewMutator(confirm)
		details := map[string]any{"jan": p.JAN, "action": p.Action, "rule": p.Rule}

		if p.Action == dcs.ActionCut {
			removed, err := m.DeleteProduct(f, p.JAN)
			if err != nil {
				return nil, false, err
			}
			d.Removed = &removed
			return details, true, nil
		}

		idx := f.Find(p.JAN)
		if idx < 0 {
			return nil, false, fmt.Errorf("approve %s: product %s no longer on fixture %s: %w", p.Action, p.JAN, p.FixtureID, shelf.ErrNotFound)
		}
		current := f.Products[idx].Face
		target := p.TargetFace(current)
		res, err := m.ChangeFacing(f, p.JAN, target)
		if err != nil {
			return nil, false, err
		}
		d.Facing = &res
		details["from"], details["to"] = current, target
		return details, res.Applied, nil
	}, func() error {
		entry, err := s.record(l, approval)
		if err != nil {
			return err
		}
		d.Entry = &entry
		return nil
	})
	if err != nil {
		d.Facing, d.Removed = nil, nil
		return d, err
	}
	if d.Facing != nil && !d.Facing.Applied {
		log.Info().Str("jan", p.JAN).Str("fixture", p.FixtureID).Msg("Approval not applied: overflow not confirmed")
		return d, nil
	}

	log.Info().Str("jan", p.JAN).Str("fixture", p.FixtureID).Str("action", string(p.Action)).Str("ruleset", ev.Ruleset).Msg("Proposal approved")
	return d, nil
}

// Reject records a rejection. The shelf is not changed.
func (s *Service) Reject(_ context.Context, fixtureID, jan, actor, reason string) (Decision, error) {
	s.decisionMu.Lock()
	defer s.decisionMu.Unlock()

	_, l, p, err := s.pendingProposal(fixtureID, jan)
	if err != nil {
		return Decision{}, err
	}
	entry, err := s.record(l, ledger.Entry{JAN: p.JAN, FixtureID: p.FixtureID, Action: p.Action, Decision: ledger.Rejected, Actor: actor, Reason: reason})
	if err != nil {
		return Decision{}, err
	}
	log.Info().Str("jan", p.JAN).Str("fixture", p.FixtureID).Str("reason", reason).Msg("Proposal rejected")
	return Decision{Proposal: p, Entry: &entry}, nil
}

func (s *Service) pendingProposal(fixtureID, jan string) (dcs.Evaluation, ledger.Ledger, dcs.Proposal, error) {
	ev, err := s.Evaluation()
	if err != nil {
		return ev, ledger.Ledger{}, dcs.Proposal{}, err
	}
	l, err := s.decisions.Load()
	if err != nil {
		return ev, l, dcs.Proposal{}, err
	}
	p, err := resolve(ev, fixtureID, jan)
	if err != nil {
		return ev, l, p, err
	}
	if l.Decided(p.JAN) {
		return ev, l, p, &shelf.ValidationError{Field: "jan", Reason: fmt.Sprintf("%s already has a decision", p.JAN)}
	}
	return ev, l, p, nil
}

func (s *Service) record(l ledger.Ledger, e ledger.Entry) (ledger.Entry, error) {
	if e.Actor == "" {
		e.Actor = s.opts.Actor
	}
	next := l.Record(e)
	if err := s.decisions.Save(next); err != nil {
		return ledger.Entry{}, fmt.Errorf("failed to save decision: %w", err)
	}
	entries := next.Entries()
	return entries[len(entries)-1], nil
}
