package model

import "time"

// Tier is the discrete recommendation bucket derived from a composite score.
type Tier string

const (
	TierFinance Tier = "finance"
	TierMonitor Tier = "monitor"
	TierAvoid   Tier = "avoid"
)

// Warning flags partial input data for presentation layers. An entity with
// warnings still receives a full score under the fallback rules; it is never
// dropped from the ranking.
type Warning string

const (
	WarnNoEmissions   Warning = "no_emissions_data"
	WarnNoCredibility Warning = "no_credibility_data"
	WarnNoTarget      Warning = "no_resolvable_target"
)

// RawMetrics holds the per-entity metrics derived from multi-year records.
// Immutable once computed for a run.
type RawMetrics struct {
	EntityID             string    `json:"entity_id"`
	MeanEmissions        float64   `json:"mean_emissions"`
	TrendPct             float64   `json:"trend_pct"`
	CredibilityAvg       float64   `json:"credibility_avg"`
	DeclaredTargetPeriod *int      `json:"declared_target_period,omitempty"`
	Assured              bool      `json:"assured"`
	Periods              int       `json:"periods"`
	Warnings             []Warning `json:"warnings,omitempty"`
}

// ComponentScores is an entity's normalized score set. Every component is on
// [0, 10] with higher always more favorable.
type ComponentScores struct {
	Emissions   float64 `json:"emissions"`
	Trend       float64 `json:"trend"`
	Credibility float64 `json:"credibility"`
	Target      float64 `json:"target"`
}

// CompositeScore is the scored, tiered output for one entity. Overall and
// the components are rounded to one decimal for presentation; the tier is
// assigned from the unrounded value.
type CompositeScore struct {
	EntityID   string          `json:"entity_id"`
	Components ComponentScores `json:"components"`
	Overall    float64         `json:"overall"`
	Tier       Tier            `json:"tier"`
	Warnings   []Warning       `json:"warnings,omitempty"`
}

// Ranking is one full pipeline run: entities ordered best-first.
type Ranking struct {
	ID          string           `json:"id,omitempty"`
	Profile     string           `json:"profile"`
	ConfigHash  string           `json:"config_hash,omitempty"`
	Scores      []CompositeScore `json:"scores"`
	GeneratedAt time.Time        `json:"generated_at,omitzero"`
}

// RankingSummary is a stored ranking without its entries.
type RankingSummary struct {
	ID          string    `json:"id"`
	Profile     string    `json:"profile"`
	ConfigHash  string    `json:"config_hash"`
	Entities    int       `json:"entities"`
	GeneratedAt time.Time `json:"generated_at"`
}
