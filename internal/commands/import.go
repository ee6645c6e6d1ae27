package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCommand(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file|directory]",
		Short: "Import bank and brokerage export files",
		Long: `Import runs the full pipeline over one export file or a directory of
exports: parse, normalize, extract payees, classify, deduplicate, persist.
With no argument the configured import directory is used. Files already in
the processed ledger are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*verbose)
			if err != nil {
				return err
			}
			defer app.Close()

			target := app.cfg.Import.Dir
			if len(args) > 0 {
				target = args[0]
			}

			info, err := os.Stat(target)
			if err != nil {
				return fmt.Errorf("stat %s: %w", target, err)
			}

			ctx := cmd.Context()
			if !info.IsDir() {
				res, err := app.pipeline.ProcessFile(ctx, target)
				if err != nil {
					return err
				}
				cmd.Printf("%s: %d rows, %d inserted, %d duplicates, %d skipped, %d errors\n",
					res.File, res.RowsParsed, res.Inserted, res.Duplicates, res.Skipped, res.Errors)
				return nil
			}

			sum, err := app.pipeline.ProcessDir(ctx, target)
			if err != nil {
				return err
			}
			cmd.Printf("files: %d seen, %d imported, %d skipped\n", sum.FilesSeen, sum.FilesImported, sum.FilesSkipped)
			cmd.Printf("rows: %d inserted, %d duplicates, %d skipped, %d errors\n", sum.Inserted, sum.Duplicates, sum.Skipped, sum.Errors)
			return nil
		},
	}
}
