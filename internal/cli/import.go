package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/dgallion1/orgtree/internal/buffer"
	"github.com/dgallion1/orgtree/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var (
		output      string
		noSummaries bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Convert markdown, html, docx, pdf, csv or text into an outline",
		Long: `Headings become outline headings and list items keep their nesting.
Task list items become checkboxes and every heading or item that owns
checkboxes gets a filled-in [n/m] summary. Without -o the outline is
written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if errors.Is(err, fs.ErrNotExist) {
				return errNotFound("file", args[0])
			}
			if err != nil {
				return err
			}
			res, err := importer.Import(cmd.Context(), data, args[0], importer.Options{
				Marker:            app.cfg.HeadingMarker,
				FallbackPdftotext: app.cfg.PDFFallbackPdftotext,
				Summaries:         !noSummaries,
				Log:               app.log,
			})
			if err != nil {
				return err
			}
			if output == "" || app.DryRun {
				_, err := cmd.OutOrStdout().Write([]byte(res.Text))
				return err
			}
			if err := buffer.SaveFile(output, buffer.Parse(res.Text)); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{
				"source": args[0],
				"output": output,
				"title":  res.Title,
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the outline to this file")
	cmd.Flags().BoolVar(&noSummaries, "no-summaries", false, "Do not add [/] summary tokens")
	return cmd
}
