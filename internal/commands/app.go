package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/finsift-dev/finsift/internal/accounts"
	"github.com/finsift-dev/finsift/internal/classify"
	"github.com/finsift-dev/finsift/internal/config"
	"github.com/finsift-dev/finsift/internal/fallback"
	"github.com/finsift-dev/finsift/internal/importer"
	"github.com/finsift-dev/finsift/internal/ingest"
	"github.com/finsift-dev/finsift/internal/logging"
	"github.com/finsift-dev/finsift/internal/normalize"
	"github.com/finsift-dev/finsift/internal/payee"
	"github.com/finsift-dev/finsift/internal/store"
)

// app is the assembled pipeline shared by the run commands.
type app struct {
	cfg      *config.Config
	store    *store.SQLiteStore
	pipeline *ingest.Pipeline
	log      zerolog.Logger
}

// loadApp reads finsift.yaml from the working directory and wires the
// pipeline around it.
func loadApp(verbose bool) (*app, error) {
	cfg, err := config.Load(config.DefaultFileName)
	if err != nil {
		return nil, fmt.Errorf("loading %s (run 'finsift init' first?): %w", config.DefaultFileName, err)
	}
	log := logging.New(verbose)

	s, err := store.Open(filepath.Join(cfg.Data.Dir, cfg.Data.DBFile))
	if err != nil {
		return nil, err
	}

	codes := cfg.Accounts
	if len(codes) == 0 {
		codes = accounts.DefaultCodes()
	}

	var resolver fallback.Resolver = fallback.Noop{}
	if cfg.Fallback.Enabled {
		key := os.Getenv(cfg.Fallback.APIKeyEnv)
		if key == "" {
			log.Warn().Str("env", cfg.Fallback.APIKeyEnv).Msg("fallback enabled but API key env is empty, using noop resolver")
		} else {
			resolver = fallback.NewOpenAIResolver(key, cfg.Fallback.Model)
		}
	}

	pipeline := ingest.New(ingest.Options{
		Registry:    importer.DefaultRegistry(),
		Normalize:   normalize.New(accounts.NewService(codes)),
		Extractor:   payee.NewExtractor(payee.DefaultAliases()),
		Engine:      classify.NewEngine(classify.DefaultRuleset()),
		Store:       s,
		Resolver:    resolver,
		Logger:      log,
		AcceptFloor: cfg.Thresholds.Accept,
		LearnFloor:  cfg.Thresholds.Learn,
		AuditPath:   filepath.Join(cfg.Data.Dir, cfg.Data.AuditLog),
	})

	return &app{cfg: cfg, store: s, pipeline: pipeline, log: log}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing store")
	}
}

func (a *app) auditPath() string {
	return filepath.Join(a.cfg.Data.Dir, a.cfg.Data.AuditLog)
}
