package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/orgtree/internal/config"
	"github.com/dgallion1/orgtree/internal/outline"
	"github.com/spf13/cobra"
)

type App struct {
	HeadingMarker string
	LogLevel      string
	PrettyJSON    bool
	DryRun        bool

	cfg config.Config
	log *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "orgtree",
		Short:        "Checkbox, summary and list maintenance for outline files",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Toggle the checkbox on line 3 and update its parents
  orgtree toggle todo.org --line 3

  # Refresh every [n/m] and [p%] token in a tree of files
  orgtree recalc notes/*.org

  # Convert a markdown checklist into an outline
  orgtree import plan.md -o plan.org
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.HeadingMarker, "heading-marker", "", "Heading marker character (default from HEADING_MARKER or '*')")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level: debug|info|warn|error (default from LOG_LEVEL or info)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVar(&app.DryRun, "dry-run", false, "Report changes without writing files")

	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newEditCmd(app, "insert-checkbox", "Insert a checkbox item below the line", outline.CmdInsertCheckbox))
	cmd.AddCommand(newEditCmd(app, "insert-summary", "Add a [/] summary token to the line", outline.CmdInsertSummary))
	cmd.AddCommand(newEditCmd(app, "renumber", "Renumber the ordered lists around the line", outline.CmdRenumberList))
	cmd.AddCommand(newEditCmd(app, "append", "Append an ordered list item after the line's list", outline.CmdAppendListItem))
	cmd.AddCommand(newEditCmd(app, "dwim", "Insert the next checkbox or list item for the line", outline.CmdDWIM))
	cmd.AddCommand(newRecalcCmd(app))
	cmd.AddCommand(newInspectCmd(app))
	cmd.AddCommand(newProgressCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newWatchCmd(app))

	return cmd
}

// setup loads configuration and applies flag overrides.
func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if app.HeadingMarker != "" {
		if len(app.HeadingMarker) != 1 {
			return fmt.Errorf("--heading-marker must be a single character, got %q", app.HeadingMarker)
		}
		cfg.HeadingMarker = app.HeadingMarker[0]
	}
	if app.LogLevel != "" {
		cfg.LogLevel = app.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.Level()
	app.cfg = cfg
	app.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

func (app *App) engineOptions(path string) []outline.Option {
	return []outline.Option{
		outline.WithHeadingMarker(app.cfg.HeadingMarker),
		outline.WithLogger(app.log.With("path", path)),
	}
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
