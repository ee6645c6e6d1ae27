package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const bankCSV = `Date,Description,Amount,Account
07/30/2025,DEBIT CARD PURCHASE MCDONALD'S F18095 MANASSAS VA,-8.42,Everyday Checking (***0441)
07/31/2025,DIRECT DEBIT STATE FARM RO SFPP (Cash),-182.40,Everyday Checking (***0441)
`

const brokerageCSV = `Brokerage services are provided by Example Securities LLC.

Run Date,Action,Symbol,Description,Amount ($)
07/30/2025,YOU BOUGHT,VFIAX,VANGUARD 500 INDEX,-1200.00
07/30/2025,DIVIDEND RECEIVED,VFIAX,VANGUARD 500 INDEX,12.33
`

func TestCSVParserBankExport(t *testing.T) {
	rows, err := (&CSVParser{}).Parse(strings.NewReader(bankCSV), "export_chk0441_2025-07.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "07/30/2025", rows[0].Date)
	assert.Equal(t, "DEBIT CARD PURCHASE MCDONALD'S F18095 MANASSAS VA", rows[0].Description)
	assert.Equal(t, "-8.42", rows[0].Amount)
	assert.Equal(t, "Everyday Checking (***0441)", rows[0].Account)
	assert.Equal(t, "export_chk0441_2025-07.csv", rows[0].SourceFile)
}

func TestCSVParserBrokeragePreamble(t *testing.T) {
	rows, err := (&CSVParser{}).Parse(strings.NewReader(brokerageCSV), "brk1-history.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "YOU BOUGHT", rows[0].Action)
	assert.Equal(t, "VFIAX", rows[0].Symbol)
	assert.Equal(t, "-1200.00", rows[0].Amount)
}

func TestCSVParserNoHeader(t *testing.T) {
	_, err := (&CSVParser{}).Parse(strings.NewReader("just,some,cells\n"), "junk.csv")
	assert.ErrorContains(t, err, "no header row")
}

func TestXLSXParser(t *testing.T) {
	xl := excelize.NewFile()
	sheet := xl.GetSheetName(0)
	cells := [][]interface{}{
		{"Date", "Description", "Amount"},
		{"07/30/2025", "ATM WITHDRAWAL", "-200.00"},
	}
	for i, row := range cells {
		for j, v := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, xl.SetCellValue(sheet, name, v))
		}
	}
	buf, err := xl.WriteToBuffer()
	require.NoError(t, err)

	rows, err := (&XLSXParser{}).Parse(buf, "brk1-history.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ATM WITHDRAWAL", rows[0].Description)
	assert.Equal(t, "-200.00", rows[0].Amount)
}

func TestRegistryForPath(t *testing.T) {
	r := DefaultRegistry()

	p, err := r.ForPath("/data/import/export.csv")
	require.NoError(t, err)
	assert.Equal(t, "csv", p.Format())

	p, err = r.ForPath("history.XLSX")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", p.Format())

	_, err = r.ForPath("notes.txt")
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.csv", "c.xlsx", "ignore.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "a.csv", files[0].Name)
	assert.Equal(t, "b.csv", files[1].Name)
	assert.Equal(t, "c.xlsx", files[2].Name)

	none, err := Scan(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Nil(t, none)
}
