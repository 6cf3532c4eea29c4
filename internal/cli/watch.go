package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/orgtree/internal/batch"
	"github.com/dgallion1/orgtree/internal/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Recalculate summaries whenever outline files change",
		Long: `Watches a file or directory tree. Every .org and .outline file is
recalculated once at startup and again each time it is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &batch.Runner{
				Workers: app.cfg.WorkerCount,
				Marker:  app.cfg.HeadingMarker,
				DryRun:  app.DryRun,
				Log:     app.log,
			}
			w, err := watch.New(args[0], watch.Options{
				Debounce: app.cfg.WatchDebounce,
				Runner:   runner,
				Log:      app.log,
			})
			if err != nil {
				return err
			}
			defer w.Stop()

			results, err := w.Scan(cmd.Context())
			if err != nil {
				return err
			}
			if once {
				return writeOut(cmd, app, map[string]any{"summary": batch.Summarize(results), "files": results})
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := w.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			app.log.Info("watch stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Recalculate once and exit")
	return cmd
}
