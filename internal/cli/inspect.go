package cli

import (
	"path/filepath"
	"strings"

	"github.com/dgallion1/orgtree/internal/doctree"
	"github.com/dgallion1/orgtree/internal/outline"
	"github.com/dgallion1/orgtree/internal/progress"
	"github.com/spf13/cobra"
)

func newInspectCmd(app *App) *cobra.Command {
	var sf selFlags
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show how a line fits in the outline hierarchy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDoc(args[0])
			if err != nil {
				return err
			}
			sel, err := sf.selection(doc)
			if err != nil {
				return err
			}
			info, err := outline.New(doc, app.engineOptions(args[0])...).Inspect(sel.Start.Line)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, info)
		},
	}
	sf.register(cmd, false)
	return cmd
}

func newProgressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <file>",
		Short: "Report checkbox completion per heading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDoc(args[0])
			if err != nil {
				return err
			}
			title := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			lines := doc.Lines()
			if len(lines) > 0 && strings.HasPrefix(lines[0], "#+TITLE:") {
				title = strings.TrimSpace(strings.TrimPrefix(lines[0], "#+TITLE:"))
			}
			tree := doctree.FromOutline(title, lines, app.cfg.HeadingMarker)
			return writeOut(cmd, app, progress.Build(tree))
		},
	}
}
