package outline

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Command names an engine entry point.
type Command string

const (
	CmdToggleCheckbox     Command = "toggle-checkbox"
	CmdInsertCheckbox     Command = "insert-checkbox"
	CmdInsertSummary      Command = "insert-summary"
	CmdRecalcSummary      Command = "recalc-summary"
	CmdRecalcAllSummaries Command = "recalc-all-summaries"
	CmdRenumberList       Command = "renumber-list"
	CmdAppendListItem     Command = "append-list-item"
	CmdDWIM               Command = "dwim"
)

// Commands lists every command Run accepts.
var Commands = []Command{
	CmdToggleCheckbox,
	CmdInsertCheckbox,
	CmdInsertSummary,
	CmdRecalcSummary,
	CmdRecalcAllSummaries,
	CmdRenumberList,
	CmdAppendListItem,
	CmdDWIM,
}

// ParseCommand validates a command name.
func ParseCommand(name string) (Command, error) {
	for _, c := range Commands {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

// Run dispatches cmd against the buffer's current selections.
func (e *Engine) Run(ctx context.Context, cmd Command) error {
	switch cmd {
	case CmdToggleCheckbox:
		return e.ToggleCheckboxes(ctx)
	case CmdInsertCheckbox:
		return e.InsertCheckbox(ctx)
	case CmdInsertSummary:
		return e.InsertSummary(ctx)
	case CmdRecalcSummary:
		return e.RecalcSummaries(ctx)
	case CmdRecalcAllSummaries:
		return e.RecalcAllSummaries(ctx)
	case CmdRenumberList:
		return e.RenumberList(ctx)
	case CmdAppendListItem:
		return e.AppendListItem(ctx)
	case CmdDWIM:
		return e.DWIM(ctx)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
}

// selectedRows returns every distinct row covered by the selections, in
// document order, clipped to the buffer.
func (e *Engine) selectedRows() []int {
	n := e.buf.LineCount()
	seen := make(map[int]bool)
	var rows []int
	for _, sel := range e.buf.Selections() {
		first, last := sel.Lines()
		for r := max(first, 0); r <= last && r < n; r++ {
			if !seen[r] {
				seen[r] = true
				rows = append(rows, r)
			}
		}
	}
	sort.Ints(rows)
	return rows
}

// ToggleCheckboxes flips every checkbox line in the selections. The target
// is inferred from the first one and applied to all, with the cascade run
// in both directions, then all summaries are recalculated.
func (e *Engine) ToggleCheckboxes(ctx context.Context) error {
	rows := e.checkboxRows()
	if len(rows) == 0 {
		return nil
	}
	return e.setCheckboxes(ctx, rows, InferTarget(e.State(rows[0])))
}

// SetCheckboxes is ToggleCheckboxes with an explicit target.
func (e *Engine) SetCheckboxes(ctx context.Context, target State) error {
	if target == Error {
		return fmt.Errorf("%w: cannot write %s", ErrInvalidState, target)
	}
	rows := e.checkboxRows()
	if len(rows) == 0 {
		return nil
	}
	return e.setCheckboxes(ctx, rows, target)
}

func (e *Engine) checkboxRows() []int {
	var rows []int
	for _, r := range e.selectedRows() {
		if e.hasCheckbox(r) {
			rows = append(rows, r)
		}
	}
	return rows
}

func (e *Engine) setCheckboxes(ctx context.Context, rows []int, target State) error {
	for _, r := range rows {
		if err := e.Toggle(ctx, r, target, true, true); err != nil {
			return err
		}
	}
	return e.RecalcAll(ctx)
}

// bulletRe matches a list bullet. Group 1 is the indent, group 2 the bullet,
// group 3 the number of an ordered bullet and group 4 its separator.
var bulletRe = regexp.MustCompile(`^([ \t]*)([-+*]|(\d+)([.)]))[ \t]`)

// InsertCheckbox adds a checkbox line below the cursor item and its nested
// lines, reusing the item's indent and bullet. Ordered bullets take the next
// number. Outside a list a "- [ ] " line is added. The cursor ends up on the
// new line.
func (e *Engine) InsertCheckbox(ctx context.Context) error {
	cur := e.cursor()
	if err := e.validRow(cur.Line); err != nil {
		return err
	}
	line := e.buf.Line(cur.Line)
	heading := e.isHeading(cur.Line)

	prefix := "- [ ] "
	ordered := false
	if !heading {
		prefix = IndentString(line) + prefix
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			bullet := m[2]
			if m[3] != "" {
				n, _ := strconv.Atoi(m[3])
				bullet = strconv.Itoa(n+1) + m[4]
				ordered = true
			}
			prefix = m[1] + bullet + " [ ] "
		}
	}

	row := cur.Line + 1
	if !heading {
		d := Indent(line)
		for r := cur.Line + 1; r < e.buf.LineCount(); r++ {
			l := e.buf.Line(r)
			if IsBlank(l) {
				continue
			}
			if IsHeading(l, e.marker) || Indent(l) <= d {
				break
			}
			row = r + 1
		}
	}

	e.logger.Debug("insert checkbox", "line", row+1)
	if err := e.insertLine(ctx, row, prefix); err != nil {
		return err
	}
	e.buf.SetCursor(Position{Line: row, Col: len(prefix)})
	if ordered {
		if err := e.Renumber(ctx, row); err != nil {
			return err
		}
	}
	return e.RecalcAll(ctx)
}

// InsertSummary appends a "[/]" token to the cursor line when it has none,
// then recalculates all summaries.
func (e *Engine) InsertSummary(ctx context.Context) error {
	cur := e.cursor()
	if err := e.validRow(cur.Line); err != nil {
		return err
	}
	line := e.buf.Line(cur.Line)
	if !HasSummary(line) {
		token := " [/]"
		if line == "" || strings.HasSuffix(line, " ") {
			token = "[/]"
		}
		end := Position{Line: cur.Line, Col: len(line)}
		if err := e.apply(ctx, Edit{Start: end, End: end, Text: token}); err != nil {
			return err
		}
	}
	return e.RecalcAll(ctx)
}

// RecalcSummaries updates the line under each selection and its owners.
func (e *Engine) RecalcSummaries(ctx context.Context) error {
	seen := make(map[int]bool)
	for _, sel := range e.buf.Selections() {
		row := sel.Start.Line
		if seen[row] {
			continue
		}
		seen[row] = true
		if err := e.Update(ctx, row, true); err != nil {
			return err
		}
	}
	return nil
}

// RecalcAllSummaries recalculates every summary in the document.
func (e *Engine) RecalcAllSummaries(ctx context.Context) error {
	return e.RecalcAll(ctx)
}

// RenumberList renumbers the ordered lists around the cursor.
func (e *Engine) RenumberList(ctx context.Context) error {
	return e.Renumber(ctx, e.cursor().Line)
}

// AppendListItem adds an ordered-list item at the cursor.
func (e *Engine) AppendListItem(ctx context.Context) error {
	return e.Append(ctx, e.cursor().Line)
}

// DWIM inserts a checkbox on a checkbox line and appends a list item on a
// numbered line. Other lines are left alone.
func (e *Engine) DWIM(ctx context.Context) error {
	row := e.cursor().Line
	if err := e.validRow(row); err != nil {
		return err
	}
	switch {
	case e.hasCheckbox(row):
		return e.InsertCheckbox(ctx)
	case e.isKind(row, KindNumbered):
		return e.AppendListItem(ctx)
	}
	return nil
}
