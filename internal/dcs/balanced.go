package dcs

import (
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"

	"shelf-dcs/internal/stats"
)

// BalancedRuleset targets a fixed share of the catalog for reduction: every
// zero-sales product is cut, the lowest performers fill the remaining
// reduction budget, and as many top performers as there are cuts get one more facing.
type BalancedRuleset struct {
	Params Params
}

func (r *BalancedRuleset) Name() string { return RulesetBalanced }

// Classify applies the two-stage selection to the whole catalog.
func (r *BalancedRuleset) Classify(items []Item, _ map[string]stats.CategoryStats, periodDays int) ProposalSet {
	proposals := make(ProposalSet, len(items))

	var zeroSales, nonZero []Item
	for _, it := range items {
		if it.SalesQty == 0 {
			zeroSales = append(zeroSales, it)
		} else {
			nonZero = append(nonZero, it)
		}
	}

	for _, it := range zeroSales {
		proposals.Add(it.proposal(ActionCut, RuleBalancedCut, -it.Face,
			fmt.Sprintf("zero sales in %d-day period (salesQty=0)", periodDays)))
	}

	target := r.TargetTotal(len(items))
	budget := max(0, target-len(zeroSales))

	var reducible []Item
	for _, it := range nonZero {
		if it.Face >= 2 {
			reducible = append(reducible, it)
		}
	}
	slices.SortStableFunc(reducible, byPIAsc)
	for rank, it := range reducible[:min(budget, len(reducible))] {
		proposals.Add(it.proposal(ActionFaceReduce, RuleBalancedReduce, -1,
			fmt.Sprintf("lowest daily rate #%d of %d reducible (PI=%.2f, face %d→%d, target %d of %d products)",
				rank+1, len(reducible), it.PIValue, it.Face, it.Face-1, target, len(items))))
	}

	var growers []Item
	for _, it := range nonZero {
		if _, claimed := proposals[it.key()]; !claimed {
			growers = append(growers, it)
		}
	}
	slices.SortStableFunc(growers, byPIDesc)
	for rank, it := range growers[:min(len(zeroSales), len(growers))] {
		proposals.Add(it.proposal(ActionFaceIncrease, RuleBalancedIncrease, 1,
			fmt.Sprintf("top daily rate #%d (PI=%.2f, face %d→%d) to absorb %d cut(s)",
				rank+1, it.PIValue, it.Face, it.Face+1, len(zeroSales))))
	}

	log.Debug().
		Int("items", len(items)).
		Int("zeroSales", len(zeroSales)).
		Int("target", target).
		Int("budget", budget).
		Msg("Balanced ruleset classified catalog")
	return proposals
}

// TargetTotal is the number of products the ruleset aims to cut or reduce.
func (r *BalancedRuleset) TargetTotal(catalogSize int) int {
	return int(math.Round(float64(catalogSize) * r.Params.TargetReductionRatio))
}
