package importer

import (
	"strings"

	"github.com/finsift-dev/finsift/internal/model"
)

// column identifies which RawRow field a header cell maps to.
type column int

const (
	colIgnore column = iota
	colDate
	colAction
	colDescription
	colAmount
	colAccount
	colAccountNumber
	colSymbol
	colCurrency
)

// headerColumns maps normalized header names to row fields. Banks and
// brokerages disagree on header vocabulary, so synonyms pile up here.
var headerColumns = map[string]column{
	"date":             colDate,
	"run date":         colDate,
	"posting date":     colDate,
	"post date":        colDate,
	"transaction date": colDate,

	"action":           colAction,
	"transaction":      colAction,
	"transaction type": colAction,

	"description": colDescription,
	"memo":        colDescription,
	"details":     colDescription,
	"name":        colDescription,

	"amount":       colAmount,
	"amount ($)":   colAmount,
	"amount (usd)": colAmount,

	"account":      colAccount,
	"account name": colAccount,

	"account number": colAccountNumber,
	"account #":      colAccountNumber,
	"account no":     colAccountNumber,

	"symbol": colSymbol,
	"ticker": colSymbol,

	"currency": colCurrency,
}

// mapHeader resolves a header row into per-index columns. ok is false when
// the row does not look like a header (no date and amount columns).
func mapHeader(cells []string) (cols []column, ok bool) {
	cols = make([]column, len(cells))
	var hasDate, hasAmount bool
	for i, cell := range cells {
		c := headerColumns[strings.ToLower(strings.TrimSpace(cell))]
		cols[i] = c
		switch c {
		case colDate:
			hasDate = true
		case colAmount:
			hasAmount = true
		}
	}
	return cols, hasDate && hasAmount
}

// rowFromCells applies a column mapping to one data row.
func rowFromCells(cols []column, cells []string, sourceFile string) model.RawRow {
	var row model.RawRow
	for i, cell := range cells {
		if i >= len(cols) {
			break
		}
		cell = strings.TrimSpace(cell)
		switch cols[i] {
		case colDate:
			row.Date = cell
		case colAction:
			row.Action = cell
		case colDescription:
			row.Description = cell
		case colAmount:
			row.Amount = cell
		case colAccount:
			row.Account = cell
		case colAccountNumber:
			row.AccountNumber = cell
		case colSymbol:
			row.Symbol = cell
		case colCurrency:
			row.Currency = cell
		}
	}
	row.SourceFile = sourceFile
	return row
}
