package ingest

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/climate-rank/internal/model"
)

// ReadXLSX parses disclosure records from the first sheet of an XLSX
// workbook. The first row is a header with the same column contract as
// the CSV loader.
func ReadXLSX(path string) ([]model.DisclosureRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("ingest: xlsx %s has no sheets", path)
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("ingest: xlsx %s sheet %q is empty", path, sheet.Name)
	}

	idx, err := headerIndex(rowToStrings(sheet.Rows[0]))
	if err != nil {
		return nil, err
	}

	var records []model.DisclosureRecord
	for i, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if allEmpty(cells) {
			continue
		}
		rec, err := parseRow(idx, cells, i+2)
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

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		cells[i] = c.String()
	}
	return cells
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
