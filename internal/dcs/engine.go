package dcs

import (
	"slices"

	"shelf-dcs/internal/shelf"
	"shelf-dcs/internal/stats"
)

// Evaluation is the complete output of one engine run. A new run replaces
// the previous evaluation entirely.
type Evaluation struct {
	Ruleset       string                         `json:"ruleset"`
	PeriodDays    int                            `json:"periodDays"`
	Proposals     ProposalSet                    `json:"proposals"`
	CategoryStats map[string]stats.CategoryStats `json:"categoryStats"`
	Summary       Summary                        `json:"summary"`
	Params        Params                         `json:"params"`
}

// Summary counts proposals by action and rule.
type Summary struct {
	Total        int          `json:"total"`
	Cut          int          `json:"cut"`
	FaceReduce   int          `json:"faceReduce"`
	FaceIncrease int          `json:"faceIncrease"`
	ByRule       map[Rule]int `json:"byRule"`
	CatalogSize  int          `json:"catalogSize"`
	// ReductionRatio is (cut+faceReduce)/catalog size, reported for the balanced ruleset.
	ReductionRatio *float64 `json:"reductionRatio,omitempty"`
}

// Engine evaluates a catalog with one selected classifier.
type Engine struct {
	classifier Classifier
	params     Params
}

// NewEngine builds an engine around an explicitly chosen classifier.
func NewEngine(c Classifier, p Params) *Engine {
	return &Engine{classifier: c, params: p}
}

// Evaluate classifies every product of every fixture. It is a pure function
// of its inputs and does not modify the fixtures.
func (e *Engine) Evaluate(fixtures map[string]*shelf.Fixture, periodDays int) Evaluation {
	items := Enrich(fixtures)

	products := make([]shelf.Product, len(items))
	for i, it := range items {
		products[i] = it.Product
	}
	categories := stats.BuildCategoryStats(products, stats.Options{
		MinSampleSize: e.params.MinCategorySize,
		Percentile:    e.params.LowPIPercentile,
	})

	proposals := e.classifier.Classify(items, categories, periodDays)
	return Evaluation{
		Ruleset:       e.classifier.Name(),
		PeriodDays:    periodDays,
		Proposals:     proposals,
		CategoryStats: categories,
		Summary:       Summarize(proposals, len(items), e.classifier.Name() == RulesetBalanced),
		Params:        e.params,
	}
}

// Enrich flattens fixtures into classification items in a stable order:
// fixtures by id, then products in display order.
func Enrich(fixtures map[string]*shelf.Fixture) []Item {
	ids := make([]string, 0, len(fixtures))
	for id := range fixtures {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var items []Item
	for _, id := range ids {
		for _, p := range fixtures[id].Products {
			items = append(items, Item{
				Product:   p,
				FixtureID: id,
				Category:  stats.CategoryKey(p),
				PIValue:   max(0, p.DailyAvgQty),
				Seq:       len(items),
			})
		}
	}
	return items
}

// Summarize counts proposals. withRatio adds the realised reduction ratio.
func Summarize(proposals ProposalSet, catalogSize int, withRatio bool) Summary {
	s := Summary{
		Total:       len(proposals),
		ByRule:      make(map[Rule]int),
		CatalogSize: catalogSize,
	}
	for _, p := range proposals {
		switch p.Action {
		case ActionCut:
			s.Cut++
		case ActionFaceReduce:
			s.FaceReduce++
		case ActionFaceIncrease:
			s.FaceIncrease++
		}
		s.ByRule[p.Rule]++
	}
	if withRatio && catalogSize > 0 {
		ratio := float64(s.Cut+s.FaceReduce) / float64(catalogSize)
		s.ReductionRatio = &ratio
	}
	return s
}
