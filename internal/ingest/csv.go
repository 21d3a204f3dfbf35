package ingest

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/climate-rank/internal/model"
)

// ReadCSV parses disclosure records from CSV. The first row is a header;
// column order is free but entity_id and period are required. Unknown
// columns are ignored so exports with extra fields load unchanged.
func ReadCSV(r io.Reader) ([]model.DisclosureRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow short rows for trailing empty cells

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read CSV header")
	}
	idx, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var records []model.DisclosureRecord
	rowNum := 1
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read CSV row %d", rowNum)
		}
		rowNum++

		rec, err := parseRow(idx, cells, rowNum)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := Validate(records); err != nil {
		return nil, err
	}
	return records, nil
}
