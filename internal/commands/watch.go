package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finsift-dev/finsift/internal/watch"
)

func newWatchCommand(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the import directory and ingest new files",
		Long: `Watch scans the configured import directory on the configured cron
schedule and runs the same pipeline as 'finsift import' on each new file,
one worker goroutine per file. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*verbose)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := watch.New(app.pipeline, app.store, app.cfg.Import.Dir, app.cfg.Watch.Schedule, app.log)
			return w.Run(ctx)
		},
	}
}
