package dcs

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelf-dcs/internal/shelf"
)

func candidate(jan, cat string, prio Priority, width int, price, cost int64) Candidate {
	return Candidate{
		JAN:      jan,
		Name:     "candidate " + jan,
		Category: cat,
		Priority: prio,
		WidthMm:  width,
		Price:    decimal.NewFromInt(price),
		Cost:     decimal.NewFromInt(cost),
	}
}

func TestScore_PerfectCandidate(t *testing.T) {
	c := candidate("C1", "drink", PriorityHigh, 90, 300, 201)
	assert.InDelta(t, 0.33, c.GrossMargin(), 1e-12)

	got := Score(c, 90)
	assert.Equal(t, ScoreBreakdown{Priority: 30, SpaceFit: 30, Margin: 20}, got.Breakdown)
	assert.Equal(t, 80.0, got.Score)
}

func TestScore_Components(t *testing.T) {
	tests := []struct {
		name     string
		c        Candidate
		cutWidth int
		want     ScoreBreakdown
	}{
		{"half width", candidate("a", "x", PriorityMedium, 90, 100, 100), 180, ScoreBreakdown{20, 15, 0}},
		{"overflow penalty", candidate("b", "x", PriorityLow, 200, 100, 90), 90, ScoreBreakdown{10, 19, 6}},
		{"overflow floors at zero", candidate("c", "x", PriorityLow, 500, 100, 50), 90, ScoreBreakdown{10, 0, 20}},
		{"unknown width defaults", candidate("d", "x", PriorityHigh, 0, 100, 70), 90, ScoreBreakdown{30, 30, 18}},
		{"negative margin", candidate("e", "x", Priority("urgent"), 90, 100, 150), 90, ScoreBreakdown{10, 30, 0}},
		{"zero price", candidate("f", "x", PriorityHigh, 45, 0, 10), 90, ScoreBreakdown{30, 15, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.c, tt.cutWidth)
			assert.Equal(t, tt.want, got.Breakdown)
			assert.Equal(t, tt.want.Priority+tt.want.SpaceFit+tt.want.Margin, got.Score)
		})
	}
}

func TestScore_MonotonicInPriority(t *testing.T) {
	for _, width := range []int{30, 90, 150, 400} {
		for _, cost := range []int64{0, 50, 67, 90, 120} {
			high := Score(candidate("h", "x", PriorityHigh, width, 100, cost), 90)
			medium := Score(candidate("m", "x", PriorityMedium, width, 100, cost), 90)
			low := Score(candidate("l", "x", PriorityLow, width, 100, cost), 90)
			assert.GreaterOrEqual(t, high.Score, medium.Score, "width=%d cost=%d", width, cost)
			assert.GreaterOrEqual(t, medium.Score, low.Score, "width=%d cost=%d", width, cost)
		}
	}
}

func TestParsePriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, ParsePriority("高"))
	assert.Equal(t, PriorityMedium, ParsePriority("中"))
	assert.Equal(t, PriorityLow, ParsePriority("低"))
	assert.Equal(t, PriorityHigh, ParsePriority(" High "))
	assert.Equal(t, PriorityLow, ParsePriority(""))
}

func matcherFixtures() map[string]*shelf.Fixture {
	return map[string]*shelf.Fixture{
		"F1": {
			ID:           "F1",
			Rows:         1,
			ShelfWidthMm: 900,
			Products: []shelf.Product{
				{JAN: "CUT", Row: 1, Face: 2, WidthMm: 90, CategoryName: "drink"},
				{JAN: "RED", Row: 1, Face: 3, WidthMm: 60, CategoryName: "drink"},
				{JAN: "UP", Row: 1, Face: 1, WidthMm: 90, CategoryName: "drink"},
				{JAN: "SNK", Row: 1, Face: 1, WidthMm: 90, CategoryName: "snack"},
			},
		},
	}
}

func matcherProposals() ProposalSet {
	ps := make(ProposalSet)
	ps.Add(Proposal{JAN: "CUT", FixtureID: "F1", Action: ActionCut, CategoryName: "drink", CurrentFace: 2, NewFaceDelta: -2})
	ps.Add(Proposal{JAN: "RED", FixtureID: "F1", Action: ActionFaceReduce, CategoryName: "drink", CurrentFace: 3, NewFaceDelta: -1})
	ps.Add(Proposal{JAN: "UP", FixtureID: "F1", Action: ActionFaceIncrease, CategoryName: "drink", CurrentFace: 1, NewFaceDelta: 1})
	ps.Add(Proposal{JAN: "SNK", FixtureID: "F1", Action: ActionCut, CategoryName: "snack", CurrentFace: 1, NewFaceDelta: -1})
	ps.Add(Proposal{JAN: "GONE", FixtureID: "F1", Action: ActionCut, CategoryName: "drink", CurrentFace: 1, NewFaceDelta: -1})
	return ps
}

func TestMatchCandidates(t *testing.T) {
	candidates := []Candidate{
		candidate("D1", "drink", PriorityLow, 90, 100, 90),
		candidate("D2", "drink", PriorityHigh, 180, 300, 201),
		candidate("D3", "drink", PriorityMedium, 90, 300, 201),
		candidate("D4", "drink", PriorityMedium, 90, 300, 201),
		candidate("D5", "drink", PriorityLow, 400, 100, 99),
	}

	got := MatchCandidates(candidates, matcherProposals(), matcherFixtures())

	cut := got[Key{FixtureID: "F1", JAN: "CUT"}]
	require.Len(t, cut.Candidates, MaxCandidates)
	// cut width 180: D2 scores 80, D3 and D4 tie at 55 and keep input order.
	assert.Equal(t, "D2", cut.Candidates[0].JAN)
	assert.Equal(t, "D3", cut.Candidates[1].JAN)
	assert.Equal(t, "D4", cut.Candidates[2].JAN)
	assert.Equal(t, 80.0, cut.Candidates[0].Score)

	assert.Len(t, got[Key{FixtureID: "F1", JAN: "RED"}].Candidates, MaxCandidates)
	assert.Empty(t, got[Key{FixtureID: "F1", JAN: "UP"}].Candidates, "faceIncrease is never matched")
	assert.Empty(t, got[Key{FixtureID: "F1", JAN: "SNK"}].Candidates, "no snack candidates")
	assert.Empty(t, got[Key{FixtureID: "F1", JAN: "GONE"}].Candidates, "product missing from catalog")
}

func TestMatchCandidates_Idempotent(t *testing.T) {
	candidates := []Candidate{
		candidate("D1", "drink", PriorityLow, 90, 100, 90),
		candidate("D2", "drink", PriorityHigh, 180, 300, 201),
	}
	fixtures := matcherFixtures()

	once := MatchCandidates(candidates, matcherProposals(), fixtures)
	twice := MatchCandidates(candidates, MatchCandidates(candidates, matcherProposals(), fixtures), fixtures)
	assert.Equal(t, once, twice)
}

func TestMatchCandidates_NoCandidates(t *testing.T) {
	ps := matcherProposals()
	got := MatchCandidates(nil, ps, matcherFixtures())
	assert.Equal(t, matcherProposals(), got)
}
