package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/finsift-dev/finsift/internal/model"
)

// XLSXParser parses spreadsheet exports. The first sheet is read with the
// same header-driven column mapping as the CSV parser.
type XLSXParser struct{}

// Format returns the parser name.
func (p *XLSXParser) Format() string { return "xlsx" }

// Parse reads an XLSX export and returns raw rows.
func (p *XLSXParser) Parse(r io.Reader, sourceFile string) ([]model.RawRow, error) {
	xl, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer xl.Close()

	sheet := xl.GetSheetName(0)
	records, err := xl.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	var cols []column
	var rows []model.RawRow
	for _, rec := range records {
		if blankRow(rec) {
			continue
		}
		if cols == nil {
			if mapped, ok := mapHeader(rec); ok {
				cols = mapped
			}
			continue
		}
		rows = append(rows, rowFromCells(cols, rec, sourceFile))
	}
	if cols == nil {
		return nil, fmt.Errorf("no header row with date and amount columns in %s", sourceFile)
	}
	return rows, nil
}
