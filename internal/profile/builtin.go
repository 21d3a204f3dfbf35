package profile

import (
	"sort"

	"github.com/rotisserie/eris"
)

// DefaultScale is the 1-3 credibility assessment scale.
var DefaultScale = Scale{Min: 1, Max: 3}

// DefaultTargetSteps is the fixed target-year step table: earlier net-zero
// commitments score higher, anything past 2050 gets the fallback.
var DefaultTargetSteps = []TargetStep{
	{MaxPeriod: 2040, Score: 10},
	{MaxPeriod: 2045, Score: 7.5},
	{MaxPeriod: 2050, Score: 5},
}

// DefaultTargetFallback scores declared targets beyond the last step.
const DefaultTargetFallback = 2.5

// Stewardship weighs trend most heavily and reads credibility as the third
// component. Thresholds are calibrated for this weighting.
func Stewardship() Profile {
	return Profile{
		Name:           "stewardship",
		Third:          ComponentCredibility,
		Weights:        Weights{Emissions: 0.3, Trend: 0.4, Third: 0.3},
		Thresholds:     Thresholds{Finance: 6.0, Monitor: 4.0},
		Scale:          DefaultScale,
		TargetSteps:    DefaultTargetSteps,
		TargetFallback: DefaultTargetFallback,
		Penalties: []Penalty{
			{When: CondNotAssured, Points: 0.25},
		},
	}
}

// Transition reads the declared net-zero target as the third component and
// penalizes entities with no resolvable target. Its thresholds are
// recalibrated for that weighting; they are not interchangeable with the
// stewardship thresholds.
func Transition() Profile {
	return Profile{
		Name:           "transition",
		Third:          ComponentTarget,
		Weights:        Weights{Emissions: 0.35, Trend: 0.35, Third: 0.3},
		Thresholds:     Thresholds{Finance: 5.0, Monitor: 3.65},
		Scale:          DefaultScale,
		TargetSteps:    DefaultTargetSteps,
		TargetFallback: DefaultTargetFallback,
		Penalties: []Penalty{
			{When: CondNoTarget, Points: 0.5},
			{When: CondWorseningTrend, Points: 0.5},
		},
	}
}

var builtins = map[string]func() Profile{
	"stewardship": Stewardship,
	"transition":  Transition,
}

// Builtin returns a named built-in profile.
func Builtin(name string) (Profile, error) {
	fn, ok := builtins[name]
	if !ok {
		return Profile{}, eris.Errorf("profile: unknown built-in %q (have %v)", name, Names())
	}
	return fn(), nil
}

// Names lists the built-in profile names in stable order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
