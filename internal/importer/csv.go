package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/finsift-dev/finsift/internal/model"
)

// CSVParser parses header-driven bank and brokerage CSV exports. Column
// order is discovered from the header row, so exports from different
// institutions share one parser.
type CSVParser struct{}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads a CSV export and returns raw rows. Preamble lines before the
// header (disclaimer text some brokerages prepend) are skipped.
func (p *CSVParser) Parse(r io.Reader, sourceFile string) ([]model.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
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

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
