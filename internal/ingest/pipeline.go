// Package ingest orchestrates the per-file pipeline: parse, normalize,
// extract, classify, hash, persist.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/finsift-dev/finsift/internal/auditlog"
	"github.com/finsift-dev/finsift/internal/classify"
	"github.com/finsift-dev/finsift/internal/dedup"
	"github.com/finsift-dev/finsift/internal/fallback"
	"github.com/finsift-dev/finsift/internal/importer"
	"github.com/finsift-dev/finsift/internal/model"
	"github.com/finsift-dev/finsift/internal/normalize"
	"github.com/finsift-dev/finsift/internal/patterns"
	"github.com/finsift-dev/finsift/internal/payee"
	"github.com/finsift-dev/finsift/internal/store"
)

// FileResult summarizes one file's pass through the pipeline.
type FileResult struct {
	File        string
	RowsParsed  int
	Inserted    int
	Duplicates  int
	Skipped     int
	Errors      int
	SkipReasons map[string]int
}

// Processed reports whether the file counts as done: at least one row was
// inserted, or every persisted row was a clean duplicate. A file whose rows
// were all skipped stays unprocessed so a later scan retries it.
func (r FileResult) Processed() bool {
	return r.Inserted > 0 || (r.Duplicates > 0 && r.Errors == 0)
}

// Summary aggregates an import run over a directory.
type Summary struct {
	FilesSeen     int
	FilesImported int
	FilesSkipped  int
	Inserted      int
	Duplicates    int
	Skipped       int
	Errors        int
}

// Pipeline wires the pipeline stages around a store.
type Pipeline struct {
	registry  *importer.Registry
	norm      *normalize.Normalizer
	extractor *payee.Extractor
	engine    *classify.Engine
	learner   *patterns.Learner
	store     store.Store
	resolver  fallback.Resolver
	log       zerolog.Logger

	acceptFloor float64
	learnFloor  float64
	auditPath   string // "" disables audit rows

	// idMu guards the taxonomy ID caches; the watcher ingests files
	// concurrently against one Pipeline.
	idMu           sync.Mutex
	categoryIDs    map[string]int64
	subcategoryIDs map[string]int64
}

// Options configures a Pipeline. Store and Registry are required; zero
// floors fall back to 0.7.
type Options struct {
	Registry  *importer.Registry
	Normalize *normalize.Normalizer
	Extractor *payee.Extractor
	Engine    *classify.Engine
	Store     store.Store
	Resolver  fallback.Resolver
	Logger    zerolog.Logger

	AcceptFloor float64
	LearnFloor  float64
	AuditPath   string
}

const defaultFloor = 0.70

func New(opts Options) *Pipeline {
	if opts.Resolver == nil {
		opts.Resolver = fallback.Noop{}
	}
	if opts.AcceptFloor == 0 {
		opts.AcceptFloor = defaultFloor
	}
	if opts.LearnFloor == 0 {
		opts.LearnFloor = defaultFloor
	}
	return &Pipeline{
		registry:       opts.Registry,
		norm:           opts.Normalize,
		extractor:      opts.Extractor,
		engine:         opts.Engine,
		learner:        patterns.NewLearner(opts.Store),
		store:          opts.Store,
		resolver:       opts.Resolver,
		log:            opts.Logger,
		acceptFloor:    opts.AcceptFloor,
		learnFloor:     opts.LearnFloor,
		auditPath:      opts.AuditPath,
		categoryIDs:    map[string]int64{},
		subcategoryIDs: map[string]int64{},
	}
}

// ProcessDir runs the pipeline over every export file in dir, skipping
// files already marked processed.
func (p *Pipeline) ProcessDir(ctx context.Context, dir string) (Summary, error) {
	files, err := importer.Scan(dir)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{FilesSeen: len(files)}
	for _, f := range files {
		done, err := p.store.IsFileProcessed(f.Name)
		if err != nil {
			return sum, err
		}
		if done {
			sum.FilesSkipped++
			continue
		}

		res, err := p.ProcessFile(ctx, f.Path)
		if err != nil {
			p.log.Error().Err(err).Str("file", f.Name).Msg("file failed")
			sum.FilesSkipped++
			continue
		}
		sum.FilesImported++
		sum.Inserted += res.Inserted
		sum.Duplicates += res.Duplicates
		sum.Skipped += res.Skipped
		sum.Errors += res.Errors
	}
	return sum, nil
}

// ProcessFile runs the full pipeline over one export file and records it in
// the processed-file ledger when it completes cleanly.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (FileResult, error) {
	rows, err := p.registry.ParseFile(path)
	if err != nil {
		return FileResult{File: path}, fmt.Errorf("parsing %s: %w", path, err)
	}

	res := FileResult{
		File:        path,
		RowsParsed:  len(rows),
		SkipReasons: map[string]int{},
	}

	// Pass one: normalize and extract. Rows whose payee stays empty are
	// batched for the fallback resolver before classification runs.
	records := make([]model.TransactionRecord, 0, len(rows))
	for _, raw := range rows {
		rec, skip := p.norm.Row(raw)
		if skip != "" {
			res.Skipped++
			res.SkipReasons[skip]++
			p.log.Debug().Str("file", res.File).Str("reason", skip).Str("action", raw.Action).Msg("row skipped")
			continue
		}
		rec.SetPayee(p.extractor.Extract(rec.Action, rec.Description))
		records = append(records, rec)
	}

	resolved := p.resolveMissingPayees(ctx, records)

	// Pass two: classify and persist. Accepted fallback answers are audited
	// here rather than at resolve time so each entry carries the hash of the
	// row it changed.
	var entries []auditlog.Entry
	for i := range records {
		if err := p.classifyAndInsert(&records[i], &res); err != nil {
			res.Errors++
			p.log.Error().Err(err).Str("file", res.File).Msg("row failed")
			continue
		}
		if ans, ok := resolved[i]; ok {
			entries = append(entries, auditlog.Entry{
				Timestamp: time.Now().UTC(),
				Source:    "fallback",
				Action:    "resolve-payee",
				Details:   fmt.Sprintf("%s -> %s (%.2f)", records[i].Action, ans.Payee, ans.Confidence),
				TxnHash:   records[i].Hash,
			})
		}
	}
	p.audit(entries)

	// The processed-file ledger is keyed by basename, matching Scan.
	if res.Processed() {
		if err := p.store.MarkFileProcessed(filepath.Base(res.File), res.Inserted, res.Duplicates, res.Errors); err != nil {
			return res, err
		}
	}
	p.log.Info().
		Str("file", res.File).
		Int("rows", res.RowsParsed).
		Int("inserted", res.Inserted).
		Int("duplicates", res.Duplicates).
		Int("skipped", res.Skipped).
		Int("errors", res.Errors).
		Msg("file ingested")
	return res, nil
}

// resolveMissingPayees sends payee-less cash records through the fallback
// resolver and applies answers at or above the acceptance floor. Accepted
// resolutions come back keyed by record index so the caller can audit them
// once hashes exist.
func (p *Pipeline) resolveMissingPayees(ctx context.Context, records []model.TransactionRecord) map[int]fallback.Resolution {
	var idx []int
	var reqs []fallback.Request
	for i, rec := range records {
		if rec.Payee != "" || rec.Symbol != "" || rec.Type.IsInvestment() {
			continue
		}
		idx = append(idx, i)
		reqs = append(reqs, fallback.Request{
			Action:      rec.Action,
			Description: rec.Description,
			Amount:      rec.Amount,
		})
	}
	if len(reqs) == 0 {
		return nil
	}

	answers, err := p.resolver.ResolvePayees(ctx, reqs)
	if err != nil {
		p.log.Warn().Err(err).Msg("payee fallback unavailable, continuing without")
		return nil
	}

	accepted := map[int]fallback.Resolution{}
	for n, ans := range answers {
		if ans.Payee == "" || ans.Confidence < p.acceptFloor {
			continue
		}
		records[idx[n]].SetPayee(ans.Payee)
		accepted[idx[n]] = ans
	}
	return accepted
}

func (p *Pipeline) classifyAndInsert(rec *model.TransactionRecord, res *FileResult) error {
	catID, subID, conf, learned, err := p.classifyRecord(rec)
	if err != nil {
		return err
	}
	rec.CategoryID = catID
	rec.SubcategoryID = subID
	rec.Confidence = conf
	rec.Hash = dedup.Hash(*rec)

	inserted, err := p.store.InsertTransaction(*rec)
	if err != nil {
		return err
	}
	if !inserted {
		res.Duplicates++
		return nil
	}
	res.Inserted++

	// Feed high-confidence cascade results back into the pattern store.
	// Pattern-store hits are not re-learned; their usage already counts.
	if !learned && conf >= p.learnFloor {
		if err := p.learner.ExtractAndLearn(rec.Description, rec.Action, catID, subID, conf); err != nil {
			p.log.Warn().Err(err).Msg("pattern learning failed, continuing")
		}
	}
	return nil
}

// classifyRecord tries the learned-pattern fast path, then the full
// cascade. learned reports a fast-path hit.
func (p *Pipeline) classifyRecord(rec *model.TransactionRecord) (catID, subID int64, conf float64, learned bool, err error) {
	match, err := p.store.FindPattern(rec.Description, rec.Action, rec.Payee)
	if err != nil {
		// Degrade to the cascade rather than losing the row.
		p.log.Warn().Err(err).Msg("pattern lookup failed, using cascade")
	} else if match != nil {
		return match.CategoryID, match.SubcategoryID, match.Confidence, true, nil
	}

	result := p.engine.Classify(classify.Input{
		Description: rec.Description,
		Action:      rec.Action,
		Amount:      rec.Amount,
		Payee:       rec.Payee,
		Type:        rec.Type,
	})
	catID, err = p.categoryID(result.Category)
	if err != nil {
		return 0, 0, 0, false, err
	}
	subID, err = p.subcategoryID(catID, result.Category, result.Subcategory)
	if err != nil {
		return 0, 0, 0, false, err
	}
	return catID, subID, result.Confidence, false, nil
}

func (p *Pipeline) categoryID(name string) (int64, error) {
	p.idMu.Lock()
	defer p.idMu.Unlock()
	if id, ok := p.categoryIDs[name]; ok {
		return id, nil
	}
	id, err := p.store.GetOrCreateCategory(name)
	if err != nil {
		return 0, err
	}
	p.categoryIDs[name] = id
	return id, nil
}

func (p *Pipeline) subcategoryID(catID int64, category, name string) (int64, error) {
	if name == "" {
		return 0, nil
	}
	key := category + "/" + name
	p.idMu.Lock()
	defer p.idMu.Unlock()
	if id, ok := p.subcategoryIDs[key]; ok {
		return id, nil
	}
	id, err := p.store.GetOrCreateSubcategory(catID, name)
	if err != nil {
		return 0, err
	}
	p.subcategoryIDs[key] = id
	return id, nil
}

func (p *Pipeline) audit(entries []auditlog.Entry) {
	if p.auditPath == "" || len(entries) == 0 {
		return
	}
	if err := auditlog.Append(p.auditPath, entries); err != nil {
		p.log.Warn().Err(err).Msg("audit log write failed")
	}
}
