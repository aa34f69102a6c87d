package stats

import (
	"slices"

	"shelf-dcs/internal/shelf"
)

const (
	// Uncategorized collects products without a category name.
	Uncategorized = "_uncategorized"
	// MinSampleSize is the smallest non-zero sample for which p10 is computed.
	MinSampleSize = 5
	// LowPercentile is the percentile used for the low-PI threshold.
	LowPercentile = 0.10
)

// CategoryStats aggregates the daily sales rate of one category.
type CategoryStats struct {
	Count    int       `json:"count"`
	PICount  int       `json:"piCount"`
	PIValues []float64 `json:"piValues"`
	Median   float64   `json:"median"`
	P10      *float64  `json:"p10"` // nil when PICount < the minimum sample size
}

// HasPercentile reports whether the category was large enough for p10.
func (c CategoryStats) HasPercentile() bool {
	return c.P10 != nil
}

// CategoryKey returns the grouping key for a product.
func CategoryKey(p shelf.Product) string {
	if p.CategoryName == "" {
		return Uncategorized
	}
	return p.CategoryName
}

// Options tunes the statistics builder.
type Options struct {
	MinSampleSize int
	Percentile    float64
}

// DefaultOptions returns the standard builder configuration.
func DefaultOptions() Options {
	return Options{MinSampleSize: MinSampleSize, Percentile: LowPercentile}
}

// BuildCategoryStats groups products by category and computes the median and
// low percentile of their non-zero daily sales rates. The result does not
// depend on input order.
func BuildCategoryStats(products []shelf.Product, opts Options) map[string]CategoryStats {
	if opts.MinSampleSize <= 0 {
		opts.MinSampleSize = MinSampleSize
	}
	if opts.Percentile <= 0 {
		opts.Percentile = LowPercentile
	}

	counts := make(map[string]int)
	rates := make(map[string][]float64)
	for _, p := range products {
		cat := CategoryKey(p)
		counts[cat]++
		if p.DailyAvgQty > 0 {
			rates[cat] = append(rates[cat], p.DailyAvgQty)
		}
	}

	out := make(map[string]CategoryStats, len(counts))
	for cat, n := range counts {
		values := rates[cat]
		if values == nil {
			values = []float64{}
		}
		slices.Sort(values)

		cs := CategoryStats{
			Count:    n,
			PICount:  len(values),
			PIValues: values,
			Median:   CalculateMedianContinuous(values),
		}
		if len(values) >= opts.MinSampleSize {
			p10 := CalculatePercentileNearestRank(values, opts.Percentile)
			cs.P10 = &p10
		}
		out[cat] = cs
	}
	return out
}
