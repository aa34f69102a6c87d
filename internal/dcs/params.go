package dcs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Params holds the tunable thresholds of both rulesets.
type Params struct {
	LowPIPercentile      float64 `yaml:"low_pi_percentile" json:"low_pi_percentile"`
	LowPIThreshold       float64 `yaml:"low_pi_threshold_ds" json:"low_pi_threshold_ds"` // fallback for small categories
	WasteRiskThreshold   float64 `yaml:"waste_risk_threshold" json:"waste_risk_threshold"`
	SimilarItemPIRatio   float64 `yaml:"similar_item_pi_ratio" json:"similar_item_pi_ratio"`
	MinCategorySize      int     `yaml:"min_category_size" json:"min_category_size"`
	FaceUpMedianMultiple float64 `yaml:"face_up_median_multiple" json:"face_up_median_multiple"`
	TargetReductionRatio float64 `yaml:"target_reduction_ratio" json:"target_reduction_ratio"`
	Workers              int     `yaml:"workers" json:"-"`
}

// DefaultParams returns the production thresholds.
func DefaultParams() Params {
	return Params{
		LowPIPercentile:      0.10,
		LowPIThreshold:       0.3,
		WasteRiskThreshold:   0.15,
		SimilarItemPIRatio:   0.10,
		MinCategorySize:      5,
		FaceUpMedianMultiple: 2,
		TargetReductionRatio: 0.20,
	}
}

// LoadParams reads a YAML override file on top of the defaults. An empty
// path returns the defaults.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read params file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse params file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("params file %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects thresholds outside their meaningful range.
func (p Params) Validate() error {
	switch {
	case p.LowPIPercentile <= 0 || p.LowPIPercentile >= 1:
		return fmt.Errorf("low_pi_percentile must be in (0,1), got %v", p.LowPIPercentile)
	case p.WasteRiskThreshold < 0 || p.WasteRiskThreshold > 1:
		return fmt.Errorf("waste_risk_threshold must be in [0,1], got %v", p.WasteRiskThreshold)
	case p.MinCategorySize < 1:
		return fmt.Errorf("min_category_size must be positive, got %d", p.MinCategorySize)
	case p.TargetReductionRatio < 0 || p.TargetReductionRatio > 1:
		return fmt.Errorf("target_reduction_ratio must be in [0,1], got %v", p.TargetReductionRatio)
	case p.LowPIThreshold < 0 || p.SimilarItemPIRatio < 0 || p.FaceUpMedianMultiple < 0:
		return fmt.Errorf("thresholds must not be negative")
	}
	return nil
}
