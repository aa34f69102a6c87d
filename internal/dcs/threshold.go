package dcs

import (
	"fmt"
	"runtime"
	"slices"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"shelf-dcs/internal/stats"
)

// ThresholdRuleset evaluates four rules in priority order per product, then
// proposes facing increases for high performers, bounded by the cut count.
type ThresholdRuleset struct {
	Params Params
}

func (r *ThresholdRuleset) Name() string { return RulesetThreshold }

// Classify runs the per-product rules concurrently and the face-up pass after them.
func (r *ThresholdRuleset) Classify(items []Item, categories map[string]stats.CategoryStats, periodDays int) ProposalSet {
	results := make([]*Proposal, len(items))

	workers := r.Params.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := max(1, (len(items)+workers-1)/workers)

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < len(items); start += chunk {
		end := min(start+chunk, len(items))
		g.Go(func() error {
			for i := start; i < end; i++ {
				results[i] = r.evaluate(items[i], categories[items[i].Category])
			}
			return nil
		})
	}
	_ = g.Wait()

	proposals := make(ProposalSet, len(items))
	for _, p := range results {
		if p != nil {
			proposals.Add(*p)
		}
	}

	r.faceUp(items, categories, proposals)

	log.Debug().
		Int("items", len(items)).
		Int("proposals", len(proposals)).
		Int("periodDays", periodDays).
		Msg("Threshold ruleset classified catalog")
	return proposals
}

// evaluate returns the first rule that fires for a product, or nil.
func (r *ThresholdRuleset) evaluate(it Item, cs stats.CategoryStats) *Proposal {
	p := r.Params

	// Rule 1: zero sales
	if it.SalesQty == 0 || it.PIValue == 0 {
		prop := it.proposal(ActionCut, RuleZeroSales, -it.Face,
			fmt.Sprintf("zero sales in period (salesQty=%d, PI=%.2f)", it.SalesQty, it.PIValue))
		return &prop
	}

	// Rule 2: low PI within the category, or an absolute floor for small categories
	if cs.PICount >= p.MinCategorySize && cs.P10 != nil {
		if it.PIValue <= *cs.P10 {
			prop := it.proposal(ActionFaceReduce, RuleLowPI, -1,
				fmt.Sprintf("bottom %.0f%% of category (PI=%.2f, threshold=%.2f)", p.LowPIPercentile*100, it.PIValue, *cs.P10))
			return &prop
		}
	} else if it.PIValue < p.LowPIThreshold {
		prop := it.proposal(ActionFaceReduce, RuleLowPI, -1,
			fmt.Sprintf("low PI (PI=%.2f < threshold %.2f, small category n=%d)", it.PIValue, p.LowPIThreshold, cs.PICount))
		return &prop
	}

	// Rule 3: waste risk
	if risk := WasteRisk(it.Face, it.DailyAvgQty); risk > p.WasteRiskThreshold {
		prop := it.proposal(ActionFaceReduce, RuleWasteRisk, -1,
			fmt.Sprintf("waste risk %.1f%% (threshold %.0f%%, face=%d, daily=%.2f)", risk*100, p.WasteRiskThreshold*100, it.Face, it.DailyAvgQty))
		return &prop
	}

	// Rule 4: consolidation candidate
	if cs.Median > 0 && it.PIValue < cs.Median*p.SimilarItemPIRatio {
		prop := it.proposal(ActionFaceReduce, RuleConsolidation, -1,
			fmt.Sprintf("consolidation candidate (PI=%.2f < %.0f%% of median %.2f)", it.PIValue, p.SimilarItemPIRatio*100, cs.Median))
		return &prop
	}

	return nil
}

// faceUp proposes +1 facing for the strongest unclaimed products, at most one
// per cut.
func (r *ThresholdRuleset) faceUp(items []Item, categories map[string]stats.CategoryStats, proposals ProposalSet) {
	cuts := proposals.Count(ActionCut)
	if cuts == 0 {
		return
	}

	var candidates []Item
	for _, it := range items {
		if _, claimed := proposals[it.key()]; claimed {
			continue
		}
		median := categories[it.Category].Median
		if it.PIValue > 0 && median > 0 && it.PIValue > median*r.Params.FaceUpMedianMultiple {
			candidates = append(candidates, it)
		}
	}
	slices.SortStableFunc(candidates, byPIDesc)

	for _, it := range candidates[:min(cuts, len(candidates))] {
		proposals.Add(it.proposal(ActionFaceIncrease, RuleFaceUp, 1,
			fmt.Sprintf("high PI (%.2f > %.1fx category median %.2f): use space freed by cuts",
				it.PIValue, r.Params.FaceUpMedianMultiple, categories[it.Category].Median)))
	}
}

// WasteRisk estimates the share of facings not turned over by daily sales.
// Products without sales carry full risk.
func WasteRisk(face int, dailyAvgQty float64) float64 {
	if face <= 0 {
		face = 1
	}
	if dailyAvgQty <= 0 {
		return 1.0
	}
	return max(0, (float64(face)-dailyAvgQty)/float64(face))
}
