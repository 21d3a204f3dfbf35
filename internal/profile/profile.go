// Package profile defines scoring profiles: named bundles of weights,
// penalty rules, classification thresholds, and scale mappings. The pieces
// are calibrated together and must travel together; mixing the weights of
// one profile with the thresholds of another produces meaningless tiers.
package profile

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Component selects the third weighted component of the composite score.
type Component string

const (
	ComponentCredibility Component = "credibility"
	ComponentTarget      Component = "target"
)

// Condition is a declarative penalty predicate evaluated per entity.
type Condition string

const (
	CondNoTarget           Condition = "no_target"
	CondNotAssured         Condition = "not_assured"
	CondWorseningTrend     Condition = "worsening_trend"
	CondMissingEmissions   Condition = "missing_emissions"
	CondMissingCredibility Condition = "missing_credibility"
)

// Conditions lists every condition a penalty rule may reference.
func Conditions() []Condition {
	return []Condition{
		CondNoTarget, CondNotAssured, CondWorseningTrend,
		CondMissingEmissions, CondMissingCredibility,
	}
}

// Weights holds the component weight triple. The three weights must sum
// to 1 within floating tolerance.
type Weights struct {
	Emissions float64 `yaml:"emissions" json:"emissions" mapstructure:"emissions"`
	Trend     float64 `yaml:"trend" json:"trend" mapstructure:"trend"`
	Third     float64 `yaml:"third" json:"third" mapstructure:"third"`
}

// Sum returns the weight total.
func (w Weights) Sum() float64 { return w.Emissions + w.Trend + w.Third }

// Thresholds map composite scores to tiers. Finance must be strictly
// greater than Monitor.
type Thresholds struct {
	Finance float64 `yaml:"finance" json:"finance" mapstructure:"finance"`
	Monitor float64 `yaml:"monitor" json:"monitor" mapstructure:"monitor"`
}

// Scale holds the bounds of the credibility assessment scale.
type Scale struct {
	Min float64 `yaml:"min" json:"min" mapstructure:"min"`
	Max float64 `yaml:"max" json:"max" mapstructure:"max"`
}

// TargetStep maps declared target periods at or below MaxPeriod to Score.
// Steps are ordered ascending by MaxPeriod; the first matching step wins.
type TargetStep struct {
	MaxPeriod int     `yaml:"max_period" json:"max_period" mapstructure:"max_period"`
	Score     float64 `yaml:"score" json:"score" mapstructure:"score"`
}

// Penalty subtracts Points from the composite score when its condition
// holds. Penalties apply in list order; the score floors at 0 after every
// application, not only at the end.
type Penalty struct {
	When   Condition `yaml:"when" json:"when" mapstructure:"when"`
	Points float64   `yaml:"points" json:"points" mapstructure:"points"`
}

// Profile is a complete scoring configuration.
type Profile struct {
	Name           string       `yaml:"name" json:"name" mapstructure:"name"`
	Third          Component    `yaml:"third" json:"third" mapstructure:"third"`
	Weights        Weights      `yaml:"weights" json:"weights" mapstructure:"weights"`
	Thresholds     Thresholds   `yaml:"thresholds" json:"thresholds" mapstructure:"thresholds"`
	Scale          Scale        `yaml:"credibility_scale" json:"credibility_scale" mapstructure:"credibility_scale"`
	TargetSteps    []TargetStep `yaml:"target_steps" json:"target_steps" mapstructure:"target_steps"`
	TargetFallback float64      `yaml:"target_fallback" json:"target_fallback" mapstructure:"target_fallback"`
	Penalties      []Penalty    `yaml:"penalties,omitempty" json:"penalties,omitempty" mapstructure:"penalties"`
}

// weightTolerance absorbs float accumulation when checking the weight sum.
const weightTolerance = 1e-6

// Validate checks that a profile is internally consistent. Invalid profiles
// are rejected outright, never silently renormalized.
func (p Profile) Validate() error {
	var errs []string

	if p.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if p.Third != ComponentCredibility && p.Third != ComponentTarget {
		errs = append(errs, fmt.Sprintf("third component must be %q or %q, got %q",
			ComponentCredibility, ComponentTarget, p.Third))
	}

	for name, w := range map[string]float64{
		"emissions": p.Weights.Emissions,
		"trend":     p.Weights.Trend,
		"third":     p.Weights.Third,
	} {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("weight %s must be >= 0", name))
		}
	}
	if math.Abs(p.Weights.Sum()-1) > weightTolerance {
		errs = append(errs, fmt.Sprintf("weights must sum to 1, got %g", p.Weights.Sum()))
	}

	if p.Thresholds.Finance <= p.Thresholds.Monitor {
		errs = append(errs, fmt.Sprintf("finance threshold %g must be strictly greater than monitor threshold %g",
			p.Thresholds.Finance, p.Thresholds.Monitor))
	}

	if p.Scale.Max <= p.Scale.Min {
		errs = append(errs, fmt.Sprintf("credibility scale max %g must be greater than min %g",
			p.Scale.Max, p.Scale.Min))
	}

	for i := 1; i < len(p.TargetSteps); i++ {
		if p.TargetSteps[i].MaxPeriod <= p.TargetSteps[i-1].MaxPeriod {
			errs = append(errs, fmt.Sprintf("target steps must be strictly ascending by max_period (step %d)", i))
		}
	}

	known := make(map[Condition]bool, len(Conditions()))
	for _, c := range Conditions() {
		known[c] = true
	}
	for i, pen := range p.Penalties {
		if !known[pen.When] {
			errs = append(errs, fmt.Sprintf("penalty %d: unknown condition %q", i, pen.When))
		}
		if pen.Points < 0 {
			errs = append(errs, fmt.Sprintf("penalty %d: points must be >= 0", i))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("profile: %q validation failed: %s", p.Name, strings.Join(errs, "; "))
	}
	return nil
}

// TargetScore maps a declared target period to its fixed component score.
// The mapping is part of the profile contract and never cohort-relative:
// a nil period scores 0, earlier periods score higher, periods beyond the
// last step get the fallback score.
func (p Profile) TargetScore(period *int) float64 {
	if period == nil {
		return 0
	}
	for _, step := range p.TargetSteps {
		if *period <= step.MaxPeriod {
			return step.Score
		}
	}
	return p.TargetFallback
}

// Hash returns a short SHA-256 hash of the profile for run reproducibility.
func (p Profile) Hash() string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:16])
}
