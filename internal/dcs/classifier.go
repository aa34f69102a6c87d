package dcs

import (
	"errors"
	"fmt"

	"shelf-dcs/internal/stats"
)

// Ruleset names accepted by NewClassifier.
const (
	RulesetThreshold = "threshold" // percentile/threshold rules (v4.0)
	RulesetBalanced  = "balanced"  // count-balanced selection (v4.1)
)

// ErrNoRuleset is returned when no ruleset was selected. Both rulesets are
// kept because the intended production behavior has not been decided.
var ErrNoRuleset = errors.New("no DCS ruleset selected: choose " + RulesetThreshold + " or " + RulesetBalanced)

// Classifier turns enriched products into proposals.
type Classifier interface {
	Name() string
	Classify(items []Item, categories map[string]stats.CategoryStats, periodDays int) ProposalSet
}

// NewClassifier returns the ruleset registered under name.
func NewClassifier(name string, p Params) (Classifier, error) {
	switch name {
	case RulesetThreshold, "v4.0":
		return &ThresholdRuleset{Params: p}, nil
	case RulesetBalanced, "v4.1":
		return &BalancedRuleset{Params: p}, nil
	case "":
		return nil, ErrNoRuleset
	default:
		return nil, fmt.Errorf("unknown DCS ruleset %q: choose %s or %s", name, RulesetThreshold, RulesetBalanced)
	}
}
