package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKnownCode(t *testing.T) {
	svc := NewService(DefaultCodes())
	assert.Equal(t, "Everyday Checking", svc.Resolve("chk0441"))
	assert.Equal(t, "Everyday Checking", svc.Resolve("CHK0441"))
	assert.Equal(t, "Taxable Brokerage", svc.Resolve(" brk1 "))
}

func TestResolveUnknownCode(t *testing.T) {
	svc := NewService(DefaultCodes())
	assert.Equal(t, "Unknown Account (XYZ999)", svc.Resolve("xyz999"))
}

func TestFromFilename(t *testing.T) {
	svc := NewService(DefaultCodes())

	tests := []struct {
		path string
		name string
		code string
		ok   bool
	}{
		{"/data/import/export_chk0441_2025-07.csv", "Everyday Checking", "chk0441", true},
		{"brk1-history.xlsx", "Taxable Brokerage", "brk1", true},
		{"statement_IRA77.csv", "Rollover IRA", "ira77", true},
		{"history_zz12.csv", "Unknown Account (ZZ12)", "zz12", true},
		{"statement.csv", "", "", false},
		{"2025-07-30.csv", "", "", false},
	}
	for _, tt := range tests {
		name, code, ok := svc.FromFilename(tt.path)
		require.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.name, name, tt.path)
		assert.Equal(t, tt.code, code, tt.path)
	}
}

func TestNewServiceCopiesTable(t *testing.T) {
	codes := map[string]string{"chk1": "Checking"}
	svc := NewService(codes)
	codes["chk1"] = "Mutated"
	assert.Equal(t, "Checking", svc.Resolve("chk1"))
}
