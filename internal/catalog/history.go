package catalog

import (
	"math"
	"math/rand/v2"
)

// WeeksOfHistory is the length of the weekly sales array shown per product.
const WeeksOfHistory = 7

// HistoryEstimator fills a weekly sales history when only a period total is
// known. It is used at import time and never by classification.
type HistoryEstimator interface {
	Estimate(salesQty, periodDays int) []int
}

func weeklyQty(salesQty, periodDays int) float64 {
	weeks := 7.0
	if periodDays > 0 {
		weeks = float64(periodDays) / 7
	}
	return math.Round(float64(salesQty) / weeks)
}

// EvenEstimator spreads the period total evenly across weeks.
type EvenEstimator struct{}

func (EvenEstimator) Estimate(salesQty, periodDays int) []int {
	w := int(weeklyQty(salesQty, periodDays))
	out := make([]int, WeeksOfHistory)
	for i := range out {
		out[i] = max(0, w)
	}
	return out
}

// JitterEstimator adds up to ±10% seeded noise to the even split, for
// demo data that should not look flat. The same seed yields the same history.
type JitterEstimator struct {
	rng *rand.Rand
}

// NewJitterEstimator returns a jitter estimator with a fixed seed.
func NewJitterEstimator(seed uint64) *JitterEstimator {
	return &JitterEstimator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (e *JitterEstimator) Estimate(salesQty, periodDays int) []int {
	w := weeklyQty(salesQty, periodDays)
	out := make([]int, WeeksOfHistory)
	for i := range out {
		noise := math.Round((e.rng.Float64() - 0.5) * w * 0.2)
		out[i] = max(0, int(w+noise))
	}
	return out
}
