package engine

import (
	"github.com/sells-group/climate-rank/internal/model"
	"github.com/sells-group/climate-rank/internal/profile"
)

// classify maps the unrounded composite score to a recommendation tier.
// Using the unrounded value keeps scores at a rounding boundary (e.g.
// 5.96 against a 6.0 cut) from flipping buckets.
func classify(overall float64, t profile.Thresholds) model.Tier {
	switch {
	case overall >= t.Finance:
		return model.TierFinance
	case overall >= t.Monitor:
		return model.TierMonitor
	default:
		return model.TierAvoid
	}
}
