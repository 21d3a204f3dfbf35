package ingest

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/climate-rank/internal/model"
)

// ReadJSON parses disclosure records from a JSON array using the wire
// shape of model.DisclosureRecord.
func ReadJSON(r io.Reader) ([]model.DisclosureRecord, error) {
	var records []model.DisclosureRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, eris.Wrap(err, "ingest: decode JSON records")
	}
	if err := Validate(records); err != nil {
		return nil, err
	}
	return records, nil
}
