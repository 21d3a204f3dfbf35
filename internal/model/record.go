// Package model defines the data structures shared across the climate
// ranking pipeline: disclosure records in, composite scores out.
package model

// Credibility is a per-period assessment of disclosure credibility.
// Each field sits on the profile's fixed bounded scale (1-3 by default).
type Credibility struct {
	Score     float64 `json:"score"`
	Alignment float64 `json:"alignment"`
	Realism   float64 `json:"realism"`
}

// Target is a stated climate target from a disclosure.
type Target struct {
	Description  string `json:"description"`
	TargetPeriod *int   `json:"target_period,omitempty"`
}

// DisclosureRecord is one entity's disclosure for one reporting period.
// (EntityID, Period) is unique within an input collection. Scope1 and
// Scope2, when present, are finite and >= 0; either may be absent.
type DisclosureRecord struct {
	EntityID    string       `json:"entity_id"`
	Period      int          `json:"period"`
	Scope1      *float64     `json:"scope1,omitempty"`
	Scope2      *float64     `json:"scope2,omitempty"`
	Credibility *Credibility `json:"credibility,omitempty"`
	Assured     bool         `json:"assured"`
	Targets     []Target     `json:"targets,omitempty"`
}
