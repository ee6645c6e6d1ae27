// Package watch runs the ingest pipeline over an import directory on a
// cron schedule.
package watch

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/finsift-dev/finsift/internal/importer"
	"github.com/finsift-dev/finsift/internal/ingest"
	"github.com/finsift-dev/finsift/internal/store"
)

// Watcher scans the import directory on a schedule and hands each new file
// to its own worker goroutine, so a slow file never blocks the scan loop.
type Watcher struct {
	pipeline *ingest.Pipeline
	store    store.Store
	dir      string
	schedule string
	log      zerolog.Logger

	mu       sync.Mutex
	inflight map[string]bool
	wg       sync.WaitGroup
}

// New creates a Watcher. schedule is a cron expression; descriptors like
// "@every 1m" are accepted.
func New(p *ingest.Pipeline, s store.Store, dir, schedule string, log zerolog.Logger) *Watcher {
	return &Watcher{
		pipeline: p,
		store:    s,
		dir:      dir,
		schedule: schedule,
		log:      log,
		inflight: map[string]bool{},
	}
}

// Run scans immediately, then on every schedule tick, until ctx is
// cancelled. In-flight files are drained before returning.
func (w *Watcher) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(w.schedule, func() { w.scan(ctx) }); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", w.schedule, err)
	}

	w.log.Info().Str("dir", w.dir).Str("schedule", w.schedule).Msg("watching import dir")
	w.scan(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	w.wg.Wait()
	return nil
}

func (w *Watcher) scan(ctx context.Context) {
	files, err := importer.Scan(w.dir)
	if err != nil {
		w.log.Error().Err(err).Str("dir", w.dir).Msg("scan failed")
		return
	}

	for _, f := range files {
		done, err := w.store.IsFileProcessed(f.Name)
		if err != nil {
			w.log.Error().Err(err).Str("file", f.Name).Msg("ledger check failed")
			continue
		}
		if done || !w.claim(f.Name) {
			continue
		}

		w.wg.Add(1)
		go func(f importer.FileInfo) {
			defer w.wg.Done()
			defer w.release(f.Name)

			res, err := w.pipeline.ProcessFile(ctx, f.Path)
			if err != nil {
				w.log.Error().Err(err).Str("file", f.Name).Msg("watch ingest failed")
				return
			}
			w.log.Info().Str("file", f.Name).Int("inserted", res.Inserted).Msg("watched file ingested")
		}(f)
	}
}

// claim reserves a file for one worker; false means it is already being
// processed.
func (w *Watcher) claim(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inflight[name] {
		return false
	}
	w.inflight[name] = true
	return true
}

func (w *Watcher) release(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inflight, name)
}
