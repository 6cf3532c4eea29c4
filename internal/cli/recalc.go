package cli

import (
	"context"
	"fmt"

	"github.com/dgallion1/orgtree/internal/batch"
	"github.com/dgallion1/orgtree/internal/outline"
	"github.com/spf13/cobra"
)

func newRecalcCmd(app *App) *cobra.Command {
	var sf selFlags
	cmd := &cobra.Command{
		Use:   "recalc <file>...",
		Short: "Recalculate summary tokens and parent checkboxes",
		Long: `Without --line every summary in every file is recalculated, files in
parallel. With --line only that line and its ancestors are updated.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sf.line != 0 {
				if len(args) != 1 {
					return fmt.Errorf("--line needs exactly one file, got %d", len(args))
				}
				return runEdit(cmd, app, args[0], &sf, string(outline.CmdRecalcSummary), func(ctx context.Context, e *outline.Engine) error {
					return e.RecalcSummaries(ctx)
				})
			}

			r := &batch.Runner{
				Workers: app.cfg.WorkerCount,
				Marker:  app.cfg.HeadingMarker,
				DryRun:  app.DryRun,
				Log:     app.log,
			}
			results, err := r.Run(cmd.Context(), args, batch.RecalcAll)
			if err != nil {
				return err
			}
			sum := batch.Summarize(results)
			if err := writeOut(cmd, app, map[string]any{"summary": sum, "files": results}); err != nil {
				return err
			}
			if sum.Failed > 0 {
				return fmt.Errorf("%d of %d files failed", sum.Failed, sum.Files)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&sf.line, "line", 0, "Only update this line (1-based) and its ancestors")
	cmd.Flags().IntVar(&sf.col, "col", 1, "Column (1-based, bytes)")
	return cmd
}
