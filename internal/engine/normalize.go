package engine

import (
	"github.com/sells-group/climate-rank/internal/model"
	"github.com/sells-group/climate-rank/internal/profile"
)

// Normalize maps each entity's raw metrics onto the common 0-10 scale.
// Emissions and trend are min-max scaled against the cohort, inverted so
// lower raw values score higher; a cohort with no spread scores 10 for
// everyone. Credibility and target use the profile's fixed mappings so
// they stay comparable across cohorts of any size, including one entity.
func Normalize(p profile.Profile, raw []model.RawMetrics) []model.ComponentScores {
	emissions := make([]float64, len(raw))
	trends := make([]float64, len(raw))
	for i, m := range raw {
		emissions[i] = m.MeanEmissions
		trends[i] = m.TrendPct
	}
	emMin, emMax := minMax(emissions)
	trMin, trMax := minMax(trends)

	sets := make([]model.ComponentScores, len(raw))
	for i, m := range raw {
		sets[i] = model.ComponentScores{
			Emissions:   invertScale(m.MeanEmissions, emMin, emMax),
			Trend:       invertScale(m.TrendPct, trMin, trMax),
			Credibility: credibilityScore(m.CredibilityAvg, p.Scale),
			Target:      p.TargetScore(m.DeclaredTargetPeriod),
		}
	}
	return sets
}

// invertScale min-max scales v to [0, 10] with the minimum mapping to 10.
// Zero range means the cohort is tied: no spread to penalize, all score 10.
func invertScale(v, min, max float64) float64 {
	if max == min {
		return 10
	}
	return clamp((max-v)/(max-min)*10, 0, 10)
}

// credibilityScore maps a scale-bounded average onto [0, 10].
func credibilityScore(avg float64, s profile.Scale) float64 {
	return clamp((avg-s.Min)/(s.Max-s.Min)*10, 0, 10)
}

func minMax(vals []float64) (min, max float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	min, max = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
