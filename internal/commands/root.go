// Package commands wires the finsift CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finsift-dev/finsift/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "finsift",
		Short:   "Bank and brokerage transaction ingestion and classification",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand(&verbose))
	rootCmd.AddCommand(newWatchCommand(&verbose))
	rootCmd.AddCommand(newClassifyCommand(&verbose))

	return rootCmd
}
