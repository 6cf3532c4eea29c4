package cli

import (
	"context"
	"errors"
	"io/fs"

	"github.com/dgallion1/orgtree/internal/buffer"
	"github.com/dgallion1/orgtree/internal/outline"
	"github.com/spf13/cobra"
)

// selFlags is the 1-based selection given on the command line.
type selFlags struct {
	line    int
	col     int
	endLine int
}

func (f *selFlags) register(cmd *cobra.Command, rangeHelp bool) {
	cmd.Flags().IntVar(&f.line, "line", 0, "Line number (1-based)")
	cmd.Flags().IntVar(&f.col, "col", 1, "Column (1-based, bytes)")
	if rangeHelp {
		cmd.Flags().IntVar(&f.endLine, "end-line", 0, "Last line of the selection (default: --line)")
	}
	_ = cmd.MarkFlagRequired("line")
}

func (f *selFlags) selection(doc *buffer.Document) (outline.Selection, error) {
	n := doc.LineCount()
	if f.line < 1 || f.line > n {
		return outline.Selection{}, lineRangeError{line: f.line, lines: n}
	}
	end := f.endLine
	if end == 0 {
		end = f.line
	}
	if end < 1 || end > n {
		return outline.Selection{}, lineRangeError{line: end, lines: n}
	}
	start := outline.Position{Line: f.line - 1, Col: max(f.col-1, 0)}
	return outline.Selection{Start: start, End: outline.Position{Line: end - 1, Col: start.Col}}, nil
}

type cursorOut struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

type editOut struct {
	Path    string    `json:"path"`
	Command string    `json:"command"`
	Changed bool      `json:"changed"`
	Saved   bool      `json:"saved"`
	Edits   int       `json:"edits"`
	Cursor  cursorOut `json:"cursor"`
	Text    string    `json:"text,omitempty"` // Only with --dry-run
}

func loadDoc(path string) (*buffer.Document, error) {
	doc, err := buffer.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errNotFound("file", path)
	}
	return doc, err
}

// runEdit applies fn to the document at path with the selection from sf and
// writes the file back when it changed.
func runEdit(cmd *cobra.Command, app *App, path string, sf *selFlags, name string, fn func(ctx context.Context, e *outline.Engine) error) error {
	doc, err := loadDoc(path)
	if err != nil {
		return err
	}
	sel, err := sf.selection(doc)
	if err != nil {
		return err
	}
	doc.SetSelections([]outline.Selection{sel})

	e := outline.New(doc, app.engineOptions(path)...)
	before := doc.Version()
	if err := fn(cmd.Context(), e); err != nil {
		return err
	}

	out := editOut{
		Path:    path,
		Command: name,
		Changed: doc.Version() != before,
		Edits:   e.Edits(),
	}
	c := doc.Cursor()
	out.Cursor = cursorOut{Line: c.Line + 1, Col: c.Col + 1}

	switch {
	case app.DryRun:
		out.Text = doc.String()
	case out.Changed:
		if err := buffer.SaveFile(path, doc); err != nil {
			return err
		}
		out.Saved = true
	}
	app.log.Debug("edit done", "path", path, "command", name, "edits", out.Edits)
	return writeOut(cmd, app, out)
}

func newEditCmd(app *App, use, short string, command outline.Command) *cobra.Command {
	var sf selFlags
	cmd := &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, app, args[0], &sf, string(command), func(ctx context.Context, e *outline.Engine) error {
				return e.Run(ctx, command)
			})
		},
	}
	sf.register(cmd, false)
	return cmd
}

func newToggleCmd(app *App) *cobra.Command {
	var sf selFlags
	var state string
	cmd := &cobra.Command{
		Use:   "toggle <file>",
		Short: "Toggle checkboxes on the selected lines and propagate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target *outline.State
			if state != "" {
				s, err := outline.ParseState(state)
				if err != nil {
					return err
				}
				target = &s
			}
			return runEdit(cmd, app, args[0], &sf, string(outline.CmdToggleCheckbox), func(ctx context.Context, e *outline.Engine) error {
				if target != nil {
					return e.SetCheckboxes(ctx, *target)
				}
				return e.ToggleCheckboxes(ctx)
			})
		},
	}
	sf.register(cmd, true)
	cmd.Flags().StringVar(&state, "state", "", "Set this state instead of toggling (checked|unchecked|indeterminate)")
	return cmd
}
