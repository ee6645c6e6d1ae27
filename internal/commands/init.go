package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finsift-dev/finsift/internal/classify"
	"github.com/finsift-dev/finsift/internal/config"
	"github.com/finsift-dev/finsift/internal/store"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new finsift project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd, absDir)
		},
	}
}

func runInit(cmd *cobra.Command, dir string) error {
	cfgPath := filepath.Join(dir, config.DefaultFileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default()
	for _, d := range []string{cfg.Data.Dir, cfg.Import.Dir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Create the database and seed the default taxonomy.
	s, err := store.Open(filepath.Join(dir, cfg.Data.Dir, cfg.Data.DBFile))
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.SeedTaxonomy(classify.DefaultRuleset().Taxonomy); err != nil {
		return fmt.Errorf("seeding taxonomy: %w", err)
	}

	cmd.Printf("Initialized finsift project in %s\n", dir)
	return nil
}
