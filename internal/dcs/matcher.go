package dcs

import (
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"shelf-dcs/internal/shelf"
)

// Priority is the buyer's preference for a replacement candidate.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority accepts English names and the 高/中/低 feed values. Anything
// else is treated as low.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "高":
		return PriorityHigh
	case "medium", "中":
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func (p Priority) points() float64 {
	switch p {
	case PriorityHigh:
		return 30
	case PriorityMedium:
		return 20
	default:
		return 10
	}
}

const (
	// MaxCandidates is the number of candidates attached to a proposal.
	MaxCandidates = 3
	// ReferenceMargin earns full margin points.
	ReferenceMargin = 0.33
)

// Candidate is an external product considered for vacated shelf space.
type Candidate struct {
	JAN      string          `json:"jan"`
	Name     string          `json:"name"`
	Maker    string          `json:"maker,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Cost     decimal.Decimal `json:"cost"`
	Category string          `json:"category"`
	Reason   string          `json:"reason,omitempty"`
	Priority Priority        `json:"priority"`
	WidthMm  int             `json:"width_mm"`
	HeightMm int             `json:"height_mm"`
	DepthMm  int             `json:"depth_mm"`
}

// GrossMargin is (price-cost)/price. It is zero unless both price and cost
// are known.
func (c Candidate) GrossMargin() float64 {
	if !c.Price.IsPositive() || !c.Cost.IsPositive() {
		return 0
	}
	return c.Price.Sub(c.Cost).Div(c.Price).InexactFloat64()
}

// ScoreBreakdown holds the three score components.
type ScoreBreakdown struct {
	Priority float64 `json:"priority"`
	SpaceFit float64 `json:"spaceFit"`
	Margin   float64 `json:"margin"`
}

// ScoredCandidate is a candidate ranked against one proposal.
type ScoredCandidate struct {
	Candidate
	GrossMargin float64        `json:"grossMargin"`
	Score       float64        `json:"score"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
}

// Score rates a candidate for a vacated width on a 0-80 scale.
func Score(c Candidate, cutWidth int) ScoredCandidate {
	if cutWidth <= 0 {
		cutWidth = shelf.DefaultWidthMm
	}
	width := c.WidthMm
	if width <= 0 {
		width = shelf.DefaultWidthMm
	}

	var b ScoreBreakdown
	b.Priority = c.Priority.points()

	if width <= cutWidth {
		b.SpaceFit = math.Round(30 * float64(width) / float64(cutWidth))
	} else {
		b.SpaceFit = max(0, 30-float64(width-cutWidth)/10)
	}

	margin := c.GrossMargin()
	b.Margin = max(0, min(20, math.Round(20*margin/ReferenceMargin)))

	return ScoredCandidate{
		Candidate:   c,
		GrossMargin: margin,
		Score:       b.Priority + b.SpaceFit + b.Margin,
		Breakdown:   b,
	}
}

// MatchCandidates attaches the best-scoring candidates of the same category
// to every cut and faceReduce proposal. Proposals whose product is no longer
// in the catalog are left without candidates. Calling it twice with the same
// inputs yields the same result.
func MatchCandidates(candidates []Candidate, proposals ProposalSet, fixtures map[string]*shelf.Fixture) ProposalSet {
	if len(candidates) == 0 {
		return proposals
	}

	byCategory := make(map[string][]Candidate)
	for _, c := range candidates {
		byCategory[c.Category] = append(byCategory[c.Category], c)
	}

	for key, p := range proposals {
		if p.Action != ActionCut && p.Action != ActionFaceReduce {
			continue
		}
		p.Candidates = nil

		pool := byCategory[p.CategoryName]
		f, ok := fixtures[p.FixtureID]
		if len(pool) == 0 || !ok {
			proposals[key] = p
			continue
		}
		idx := f.Find(p.JAN)
		if idx < 0 {
			proposals[key] = p
			continue
		}
		width := cutWidth(f.Products[idx])

		scored := make([]ScoredCandidate, len(pool))
		for i, c := range pool {
			scored[i] = Score(c, width)
		}
		slices.SortStableFunc(scored, func(a, b ScoredCandidate) int {
			switch {
			case a.Score > b.Score:
				return -1
			case a.Score < b.Score:
				return 1
			}
			return 0
		})
		p.Candidates = scored[:min(MaxCandidates, len(scored))]
		proposals[key] = p
	}
	return proposals
}

func cutWidth(p shelf.Product) int {
	face := p.Face
	if face <= 0 {
		face = 1
	}
	return p.EffectiveWidthMm() * face
}
