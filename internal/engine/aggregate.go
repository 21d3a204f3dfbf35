package engine

import (
	"regexp"
	"sort"

	"github.com/sells-group/climate-rank/internal/model"
	"github.com/sells-group/climate-rank/internal/profile"
)

// netZeroRe matches a net-zero intent in a target description: the token
// "net" followed by an optional separator then "zero", case-insensitive.
var netZeroRe = regexp.MustCompile(`(?i)\bnet[ _-]?zero\b`)

// Aggregate reduces each entity's multi-year records into derived raw
// metrics. Input order of records is irrelevant; output entities keep the
// first-seen order of their entity IDs. The scale supplies the credibility
// fallback for entities with no credibility data.
func Aggregate(records []model.DisclosureRecord, scale profile.Scale) []model.RawMetrics {
	byEntity := make(map[string][]model.DisclosureRecord)
	var order []string
	for _, r := range records {
		if _, seen := byEntity[r.EntityID]; !seen {
			order = append(order, r.EntityID)
		}
		byEntity[r.EntityID] = append(byEntity[r.EntityID], r)
	}

	metrics := make([]model.RawMetrics, 0, len(order))
	for _, id := range order {
		metrics = append(metrics, aggregateEntity(id, byEntity[id], scale))
	}
	return metrics
}

func aggregateEntity(id string, recs []model.DisclosureRecord, scale profile.Scale) model.RawMetrics {
	sort.Slice(recs, func(i, j int) bool { return recs[i].Period < recs[j].Period })

	m := model.RawMetrics{EntityID: id, Periods: len(recs)}

	// Emissions: only periods with at least one reported scope count.
	// A missing scope within a qualifying period contributes 0 to the total.
	var totals []float64
	var sum float64
	for _, r := range recs {
		if r.Scope1 == nil && r.Scope2 == nil {
			continue
		}
		total := deref(r.Scope1) + deref(r.Scope2)
		totals = append(totals, total)
		sum += total
	}
	if len(totals) == 0 {
		m.MeanEmissions = 0
		m.Warnings = append(m.Warnings, model.WarnNoEmissions)
	} else {
		m.MeanEmissions = sum / float64(len(totals))
	}

	// Trend: percentage change between the earliest and latest qualifying
	// periods. Zero baseline or a single qualifying period yields 0.
	if len(totals) >= 2 && totals[0] != 0 {
		first, last := totals[0], totals[len(totals)-1]
		m.TrendPct = (last - first) / first * 100
	}

	// Credibility: mean of available scores; entities with none get the
	// scale minimum so they are neither excluded nor rewarded.
	var credSum float64
	var credN int
	for _, r := range recs {
		if r.Credibility != nil {
			credSum += r.Credibility.Score
			credN++
		}
	}
	if credN == 0 {
		m.CredibilityAvg = scale.Min
		m.Warnings = append(m.Warnings, model.WarnNoCredibility)
	} else {
		m.CredibilityAvg = credSum / float64(credN)
	}

	m.DeclaredTargetPeriod = resolveTargetPeriod(recs)
	if m.DeclaredTargetPeriod == nil {
		m.Warnings = append(m.Warnings, model.WarnNoTarget)
	}

	// Assurance status follows the latest reporting period.
	m.Assured = recs[len(recs)-1].Assured

	return m
}

// resolveTargetPeriod scans all targets across all periods for net-zero
// intent and returns the maximum declared period among matches. The max
// (not min) selection mirrors the observed source behavior; see DESIGN.md.
func resolveTargetPeriod(recs []model.DisclosureRecord) *int {
	var best *int
	for _, r := range recs {
		for _, t := range r.Targets {
			if t.TargetPeriod == nil || !netZeroRe.MatchString(t.Description) {
				continue
			}
			if best == nil || *t.TargetPeriod > *best {
				period := *t.TargetPeriod
				best = &period
			}
		}
	}
	return best
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
