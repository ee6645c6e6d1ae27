package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsift-dev/finsift/internal/accounts"
	"github.com/finsift-dev/finsift/internal/auditlog"
	"github.com/finsift-dev/finsift/internal/classify"
	"github.com/finsift-dev/finsift/internal/fallback"
	"github.com/finsift-dev/finsift/internal/importer"
	"github.com/finsift-dev/finsift/internal/logging"
	"github.com/finsift-dev/finsift/internal/normalize"
	"github.com/finsift-dev/finsift/internal/payee"
	"github.com/finsift-dev/finsift/internal/store"
)

const exportCSV = `Date,Description,Amount
07/30/2025,DEBIT CARD PURCHASE MCDONALD'S F18095 MANASSAS VA,-8.42
07/30/2025,DIRECT DEBIT STATE FARM RO SFPP (Cash),-182.40
07/31/2025,PENDING DEBIT CARD PURCHASE WEGMANS,-54.10
07/31/2025,ATM WITHDRAWAL 5512 MAIN ST,-200.00
`

func testPipeline(t *testing.T) (*Pipeline, *store.SQLiteStore) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "finsift.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	p := New(Options{
		Registry:  importer.DefaultRegistry(),
		Normalize: normalize.New(accounts.NewService(accounts.DefaultCodes())),
		Extractor: payee.NewExtractor(payee.DefaultAliases()),
		Engine:    classify.NewEngine(classify.DefaultRuleset()),
		Store:     s,
		Resolver:  fallback.Noop{},
		Logger:    logging.NewWithWriter(os.Stderr),
	})
	return p, s
}

func writeExport(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessFile(t *testing.T) {
	p, s := testPipeline(t)
	path := writeExport(t, t.TempDir(), "export_chk0441_2025-07.csv", exportCSV)

	res, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 4, res.RowsParsed)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.SkipReasons[normalize.SkipPending])
	assert.Zero(t, res.Duplicates)
	assert.Zero(t, res.Errors)
	assert.True(t, res.Processed())

	done, err := s.IsFileProcessed("export_chk0441_2025-07.csv")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestProcessFileIdempotent(t *testing.T) {
	p, _ := testPipeline(t)
	path := writeExport(t, t.TempDir(), "export_chk0441_2025-07.csv", exportCSV)

	first, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 3, first.Inserted)

	second, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.Equal(t, 3, second.Duplicates)
	assert.Zero(t, second.Errors)
	assert.True(t, second.Processed(), "all-duplicate rerun still counts as processed")
}

func TestProcessFileAllSkippedStaysUnprocessed(t *testing.T) {
	p, s := testPipeline(t)
	path := writeExport(t, t.TempDir(), "export_chk0441_2025-08.csv",
		"Date,Description,Amount\nnot-a-date,DEBIT CARD PURCHASE WEGMANS,-12.00\n")

	res, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
	assert.Zero(t, res.Duplicates)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.SkipReasons[normalize.SkipBadDate])
	assert.False(t, res.Processed(), "nothing was ingested, so a later scan should retry")

	done, err := s.IsFileProcessed("export_chk0441_2025-08.csv")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestProcessFileConcurrent(t *testing.T) {
	p, s := testPipeline(t)
	dir := t.TempDir()

	paths := make([]string, 8)
	for i := range paths {
		content := fmt.Sprintf(
			"Date,Description,Amount\n07/30/2025,DEBIT CARD PURCHASE MCDONALD'S F%05d RESTON VA,-%d.25\n", i, 10+i)
		paths[i] = writeExport(t, dir, fmt.Sprintf("export_chk%04d_2025-07.csv", i), content)
	}

	var wg sync.WaitGroup
	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			res, err := p.ProcessFile(context.Background(), path)
			assert.NoError(t, err)
			assert.Equal(t, 1, res.Inserted)
		}(path)
	}
	wg.Wait()

	cats, err := s.Categories()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, c := range cats {
		names[c.Name] = true
	}
	assert.True(t, names["Food & Dining"])
}

func TestProcessFileStoresClassification(t *testing.T) {
	p, s := testPipeline(t)
	path := writeExport(t, t.TempDir(), "export_chk0441_2025-07.csv", exportCSV)

	_, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	cats, err := s.Categories()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, c := range cats {
		names[c.Name] = true
	}
	assert.True(t, names["Food & Dining"], "card purchase row")
	assert.True(t, names["Insurance"], "direct debit row")
	assert.True(t, names["Banking"], "atm row")
}

func TestProcessFileLearnsPatterns(t *testing.T) {
	p, s := testPipeline(t)
	path := writeExport(t, t.TempDir(), "export_chk0441_2025-07.csv", exportCSV)

	_, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	// The 0.90 McDonald's classification clears the learn floor, so its
	// merchant token is now a stored pattern.
	m, err := s.FindPattern("MCDONALD'S F22001 RESTON VA", "", "")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.Confidence, 0.9)
}

func TestProcessDir(t *testing.T) {
	p, s := testPipeline(t)
	dir := t.TempDir()
	writeExport(t, dir, "export_chk0441_2025-07.csv", exportCSV)
	writeExport(t, dir, "notes.txt", "not an export")

	sum, err := p.ProcessDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.FilesSeen)
	assert.Equal(t, 1, sum.FilesImported)
	assert.Equal(t, 3, sum.Inserted)

	// Second run skips the already-processed file.
	sum, err = p.ProcessDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.FilesSkipped)
	assert.Zero(t, sum.FilesImported)

	done, err := s.IsFileProcessed("export_chk0441_2025-07.csv")
	require.NoError(t, err)
	assert.True(t, done)
}

type stubResolver struct {
	answers []fallback.Resolution
}

func (r stubResolver) ResolvePayees(ctx context.Context, reqs []fallback.Request) ([]fallback.Resolution, error) {
	if len(reqs) != len(r.answers) {
		return nil, fmt.Errorf("expected %d requests, got %d", len(r.answers), len(reqs))
	}
	return r.answers, nil
}

func TestProcessFileAuditsAcceptedFallback(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "finsift.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	auditPath := filepath.Join(dir, "audit.csv")
	p := New(Options{
		Registry:  importer.DefaultRegistry(),
		Normalize: normalize.New(accounts.NewService(accounts.DefaultCodes())),
		Extractor: payee.NewExtractor(payee.DefaultAliases()),
		Engine:    classify.NewEngine(classify.DefaultRuleset()),
		Store:     s,
		Resolver:  stubResolver{answers: []fallback.Resolution{{Payee: "Luigi Pizza", Confidence: 0.92}}},
		Logger:    logging.NewWithWriter(os.Stderr),
		AuditPath: auditPath,
	})

	// Lowercase description defeats structural extraction, so the resolver
	// supplies the payee.
	path := writeExport(t, dir, "export_chk0441_2025-07.csv",
		"Date,Description,Amount\n07/30/2025,misc adj 99812,-45.00\n")
	res, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 1, res.Inserted)

	rec, err := s.FindTransactionByHashPrefix("")
	require.NoError(t, err)
	assert.Equal(t, "Luigi Pizza", rec.Payee)

	entries, err := auditlog.Read(auditPath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fallback", entries[0].Source)
	assert.Equal(t, "resolve-payee", entries[0].Action)
	assert.Equal(t, rec.Hash, entries[0].TxnHash, "audit entry should point at the row it changed")
}

func TestProcessFileUnparsable(t *testing.T) {
	p, _ := testPipeline(t)
	path := writeExport(t, t.TempDir(), "junk.csv", "no,header,here\n1,2,3\n")

	_, err := p.ProcessFile(context.Background(), path)
	assert.Error(t, err)
}
