// Package engine implements the climate scoring and ranking pipeline:
// temporal aggregation, cohort normalization, weighted composition, tier
// classification, and deterministic ranking. The pipeline is a pure
// function of (records, profile); identical inputs always yield identical
// output, including tie order, so concurrent runs with different profiles
// need no coordination.
package engine

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/climate-rank/internal/model"
	"github.com/sells-group/climate-rank/internal/profile"
)

// ErrEmptyCohort is returned when no entities are supplied; there is
// nothing to normalize against.
var ErrEmptyCohort = eris.New("engine: empty cohort")

// Engine scores and ranks a cohort under one validated scoring profile.
type Engine struct {
	prof profile.Profile
}

// New creates an Engine, rejecting invalid profiles before any scoring.
func New(p profile.Profile) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Engine{prof: p}, nil
}

// Profile returns the engine's scoring profile.
func (e *Engine) Profile() profile.Profile { return e.prof }

// Rank runs the full pipeline over a batch of disclosure records and
// returns entities ordered best-first. The input collection is treated as
// read-only; nothing is cached across runs.
func (e *Engine) Rank(records []model.DisclosureRecord) (*model.Ranking, error) {
	raw := Aggregate(records, e.prof.Scale)
	if len(raw) == 0 {
		return nil, ErrEmptyCohort
	}

	sets := Normalize(e.prof, raw)

	results := make([]scored, len(raw))
	for i := range raw {
		results[i] = compose(e.prof, raw[i], sets[i])
	}
	rankScores(results)

	scores := make([]model.CompositeScore, len(results))
	var flagged int
	for i, r := range results {
		scores[i] = r.out
		if len(r.out.Warnings) > 0 {
			flagged++
		}
	}

	zap.L().Debug("engine: ranking complete",
		zap.String("profile", e.prof.Name),
		zap.Int("entities", len(scores)),
		zap.Int("flagged_partial_data", flagged),
	)

	return &model.Ranking{
		Profile:    e.prof.Name,
		ConfigHash: e.prof.Hash(),
		Scores:     scores,
	}, nil
}
