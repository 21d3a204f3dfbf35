// Package ingest loads disclosure records from CSV, JSON, and XLSX files.
// It is a format-only layer: entity aliasing and period-unit resolution
// happen upstream. Every loader enforces the record invariants at the
// boundary so the engine can trust its input.
package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/climate-rank/internal/model"
)

// Validate checks the record collection invariants: (entity_id, period)
// unique, scopes finite and >= 0 when present.
func Validate(records []model.DisclosureRecord) error {
	type key struct {
		entity string
		period int
	}
	seen := make(map[key]bool, len(records))

	for i, r := range records {
		if r.EntityID == "" {
			return eris.Errorf("ingest: record %d: empty entity_id", i)
		}
		k := key{r.EntityID, r.Period}
		if seen[k] {
			return eris.Errorf("ingest: duplicate record for entity %q period %d", r.EntityID, r.Period)
		}
		seen[k] = true

		for name, scope := range map[string]*float64{"scope1": r.Scope1, "scope2": r.Scope2} {
			if scope == nil {
				continue
			}
			if math.IsNaN(*scope) || math.IsInf(*scope, 0) || *scope < 0 {
				return eris.Errorf("ingest: entity %q period %d: %s must be finite and >= 0, got %v",
					r.EntityID, r.Period, name, *scope)
			}
		}
	}
	return nil
}

// recordColumns is the header contract shared by the CSV and XLSX loaders.
var recordColumns = []string{
	"entity_id", "period", "scope1", "scope2",
	"credibility_score", "credibility_alignment", "credibility_realism",
	"assured", "targets",
}

// headerIndex maps lowercased column names to positions, requiring at
// least entity_id and period.
func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"entity_id", "period"} {
		if _, ok := idx[required]; !ok {
			return nil, eris.Errorf("ingest: missing required column %q", required)
		}
	}
	return idx, nil
}

// parseRow converts one tabular row into a DisclosureRecord.
func parseRow(idx map[string]int, cells []string, rowNum int) (model.DisclosureRecord, error) {
	cell := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}

	var rec model.DisclosureRecord
	rec.EntityID = cell("entity_id")

	period, err := strconv.Atoi(cell("period"))
	if err != nil {
		return rec, eris.Wrapf(err, "ingest: row %d: period", rowNum)
	}
	rec.Period = period

	if rec.Scope1, err = parseOptFloat(cell("scope1")); err != nil {
		return rec, eris.Wrapf(err, "ingest: row %d: scope1", rowNum)
	}
	if rec.Scope2, err = parseOptFloat(cell("scope2")); err != nil {
		return rec, eris.Wrapf(err, "ingest: row %d: scope2", rowNum)
	}

	if score := cell("credibility_score"); score != "" {
		cred := model.Credibility{}
		if cred.Score, err = strconv.ParseFloat(score, 64); err != nil {
			return rec, eris.Wrapf(err, "ingest: row %d: credibility_score", rowNum)
		}
		if v, err := parseOptFloat(cell("credibility_alignment")); err == nil && v != nil {
			cred.Alignment = *v
		}
		if v, err := parseOptFloat(cell("credibility_realism")); err == nil && v != nil {
			cred.Realism = *v
		}
		rec.Credibility = &cred
	}

	if assured := cell("assured"); assured != "" {
		rec.Assured, err = strconv.ParseBool(assured)
		if err != nil {
			return rec, eris.Wrapf(err, "ingest: row %d: assured", rowNum)
		}
	}

	rec.Targets, err = parseTargets(cell("targets"))
	if err != nil {
		return rec, eris.Wrapf(err, "ingest: row %d: targets", rowNum)
	}

	return rec, nil
}

// parseTargets decodes the compact targets cell format: semicolon-separated
// entries, each "description" or "description@period".
func parseTargets(s string) ([]model.Target, error) {
	if s == "" {
		return nil, nil
	}
	var targets []model.Target
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		t := model.Target{Description: entry}
		if at := strings.LastIndex(entry, "@"); at >= 0 {
			period, err := strconv.Atoi(strings.TrimSpace(entry[at+1:]))
			if err != nil {
				return nil, fmt.Errorf("target %q: %w", entry, err)
			}
			t.Description = strings.TrimSpace(entry[:at])
			t.TargetPeriod = &period
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func parseOptFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
