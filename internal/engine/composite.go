package engine

import (
	"math"

	"github.com/sells-group/climate-rank/internal/model"
	"github.com/sells-group/climate-rank/internal/profile"
)

// scored pairs the presentation output with the exact composite value.
// Sorting and classification use the exact value; rounding is strictly a
// presentation concern and never feeds back into computation.
type scored struct {
	out   model.CompositeScore
	exact float64
}

// compose combines the normalized components under the profile's weights
// and applies the penalty rules in order, flooring at 0 after each one so
// an intermediate penalty can never push the score negative.
func compose(p profile.Profile, raw model.RawMetrics, comp model.ComponentScores) scored {
	third := comp.Credibility
	if p.Third == profile.ComponentTarget {
		third = comp.Target
	}

	overall := p.Weights.Emissions*comp.Emissions +
		p.Weights.Trend*comp.Trend +
		p.Weights.Third*third

	for _, pen := range p.Penalties {
		if conditionHolds(pen.When, raw) {
			overall = math.Max(0, overall-pen.Points)
		}
	}

	return scored{
		out: model.CompositeScore{
			EntityID: raw.EntityID,
			Components: model.ComponentScores{
				Emissions:   round1(comp.Emissions),
				Trend:       round1(comp.Trend),
				Credibility: round1(comp.Credibility),
				Target:      round1(comp.Target),
			},
			Overall:  round1(overall),
			Tier:     classify(overall, p.Thresholds),
			Warnings: raw.Warnings,
		},
		exact: overall,
	}
}

// conditionHolds evaluates a declarative penalty condition against an
// entity's raw metrics.
func conditionHolds(c profile.Condition, m model.RawMetrics) bool {
	switch c {
	case profile.CondNoTarget:
		return m.DeclaredTargetPeriod == nil
	case profile.CondNotAssured:
		return !m.Assured
	case profile.CondWorseningTrend:
		return m.TrendPct > 0
	case profile.CondMissingEmissions:
		return hasWarning(m.Warnings, model.WarnNoEmissions)
	case profile.CondMissingCredibility:
		return hasWarning(m.Warnings, model.WarnNoCredibility)
	}
	return false
}

func hasWarning(ws []model.Warning, w model.Warning) bool {
	for _, have := range ws {
		if have == w {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
