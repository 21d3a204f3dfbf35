package store

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/climate-rank/internal/model"
)

// Nested payloads (credibility, targets, component scores, warnings) are
// stored as JSON text columns so both backends share one wire shape.

func encodeRecordJSON(r model.DisclosureRecord) (credJSON, targetsJSON *string, err error) {
	if r.Credibility != nil {
		b, err := json.Marshal(r.Credibility)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "store: marshal credibility %s/%d", r.EntityID, r.Period)
		}
		s := string(b)
		credJSON = &s
	}
	if len(r.Targets) > 0 {
		b, err := json.Marshal(r.Targets)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "store: marshal targets %s/%d", r.EntityID, r.Period)
		}
		s := string(b)
		targetsJSON = &s
	}
	return credJSON, targetsJSON, nil
}

func decodeRecordJSON(r *model.DisclosureRecord, credJSON, targetsJSON string) error {
	if credJSON != "" {
		if err := json.Unmarshal([]byte(credJSON), &r.Credibility); err != nil {
			return eris.Wrapf(err, "store: unmarshal credibility %s/%d", r.EntityID, r.Period)
		}
	}
	if targetsJSON != "" {
		if err := json.Unmarshal([]byte(targetsJSON), &r.Targets); err != nil {
			return eris.Wrapf(err, "store: unmarshal targets %s/%d", r.EntityID, r.Period)
		}
	}
	return nil
}

func encodeScoreJSON(score model.CompositeScore) (componentsJSON string, warningsJSON *string, err error) {
	b, err := json.Marshal(score.Components)
	if err != nil {
		return "", nil, eris.Wrapf(err, "store: marshal components %s", score.EntityID)
	}
	componentsJSON = string(b)
	if len(score.Warnings) > 0 {
		wb, err := json.Marshal(score.Warnings)
		if err != nil {
			return "", nil, eris.Wrapf(err, "store: marshal warnings %s", score.EntityID)
		}
		s := string(wb)
		warningsJSON = &s
	}
	return componentsJSON, warningsJSON, nil
}

func decodeScoreJSON(score *model.CompositeScore, componentsJSON, warningsJSON string) error {
	if err := json.Unmarshal([]byte(componentsJSON), &score.Components); err != nil {
		return eris.Wrapf(err, "store: unmarshal components %s", score.EntityID)
	}
	if warningsJSON != "" {
		if err := json.Unmarshal([]byte(warningsJSON), &score.Warnings); err != nil {
			return eris.Wrapf(err, "store: unmarshal warnings %s", score.EntityID)
		}
	}
	return nil
}
