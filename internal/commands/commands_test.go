package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsift-dev/finsift/internal/auditlog"
	"github.com/finsift-dev/finsift/internal/config"
	"github.com/finsift-dev/finsift/internal/store"
)

const sampleCSV = `Date,Description,Amount
07/30/2025,POS 100231 LUIGI PIZZA,-22.00
`

// chdir is a stand-in for t.Chdir (Go 1.24+) on older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	_, err := run(t, "init")
	require.NoError(t, err)
	return dir
}

func TestInitCreatesProject(t *testing.T) {
	dir := initProject(t)

	assert.FileExists(t, filepath.Join(dir, config.DefaultFileName))
	assert.DirExists(t, filepath.Join(dir, "import"))
	assert.FileExists(t, filepath.Join(dir, "data", "finsift.db"))

	s, err := store.Open(filepath.Join(dir, "data", "finsift.db"))
	require.NoError(t, err)
	defer s.Close()
	cats, err := s.Categories()
	require.NoError(t, err)
	assert.NotEmpty(t, cats, "taxonomy should be seeded")

	// Second init refuses to clobber.
	_, err = run(t, "init")
	assert.ErrorContains(t, err, "already exists")
}

func TestImportCommand(t *testing.T) {
	dir := initProject(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "import", "export_chk0441_2025-07.csv"), []byte(sampleCSV), 0o644))

	out, err := run(t, "import")
	require.NoError(t, err)
	assert.Contains(t, out, "1 imported")
	assert.Contains(t, out, "1 inserted")

	// Rerun: the file is in the processed ledger.
	out, err = run(t, "import")
	require.NoError(t, err)
	assert.Contains(t, out, "1 skipped")
}

func TestClassifyOverride(t *testing.T) {
	dir := initProject(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "import", "export_chk0441_2025-07.csv"), []byte(sampleCSV), 0o644))
	_, err := run(t, "import")
	require.NoError(t, err)

	s, err := store.Open(filepath.Join(dir, "data", "finsift.db"))
	require.NoError(t, err)
	rec, err := s.FindTransactionByHashPrefix("")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Refuses without the flag.
	_, err = run(t, "classify", rec.Hash[:12], "Food & Dining/Restaurants")
	assert.ErrorContains(t, err, "--override")

	out, err := run(t, "classify", "--override", rec.Hash[:12], "Food & Dining/Restaurants")
	require.NoError(t, err)
	assert.Contains(t, out, "reclassified")

	s, err = store.Open(filepath.Join(dir, "data", "finsift.db"))
	require.NoError(t, err)
	defer s.Close()
	got, err := s.FindTransactionByHashPrefix(rec.Hash[:12])
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Confidence)
	assert.NotZero(t, got.CategoryID)
	assert.NotZero(t, got.SubcategoryID)

	entries, err := auditlog.Read(filepath.Join(dir, "data", "audit.csv"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "override", entries[0].Source)
	assert.Equal(t, rec.Hash, entries[0].TxnHash)
}

func TestImportMissingConfig(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := run(t, "import")
	assert.ErrorContains(t, err, "finsift init")
}
