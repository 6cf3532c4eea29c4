// Package buffer provides the in-memory line buffer the outline engine edits.
package buffer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/orgtree/internal/outline"
)

// ErrStalePosition is returned by Apply when an edit addresses a line or
// column that no longer exists.
var ErrStalePosition = errors.New("stale position")

// Document is a line-oriented text buffer. It always holds at least one
// line. It is not safe for concurrent use.
type Document struct {
	lines           []string
	crlf            bool
	trailingNewline bool
	sels            []outline.Selection
	version         int64
	applied         int
}

// Parse builds a Document from text. CRLF line endings and a final newline
// are remembered and restored by String.
func Parse(text string) *Document {
	d := &Document{}
	d.load(text)
	return d
}

func (d *Document) load(text string) {
	d.crlf = strings.Contains(text, "\r\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	d.trailingNewline = strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	d.lines = strings.Split(text, "\n")
	d.sels = []outline.Selection{{}}
}

// String renders the document with its original line endings.
func (d *Document) String() string {
	sep := "\n"
	if d.crlf {
		sep = "\r\n"
	}
	s := strings.Join(d.lines, sep)
	if d.trailingNewline {
		s += sep
	}
	return s
}

// Replace swaps the whole content and resets the cursor to the start.
func (d *Document) Replace(text string) {
	d.load(text)
	d.version++
}

// Lines returns a copy of the document lines.
func (d *Document) Lines() []string {
	return append([]string(nil), d.lines...)
}

// Version increases on every applied edit and on Replace.
func (d *Document) Version() int64 { return d.version }

// Applied returns the number of edits applied since the document was parsed.
func (d *Document) Applied() int { return d.applied }

func (d *Document) LineCount() int { return len(d.lines) }

func (d *Document) Line(row int) string {
	if row < 0 || row >= len(d.lines) {
		return ""
	}
	return d.lines[row]
}

// Apply replaces the span between e.Start and e.End with e.Text. Text may
// contain newlines, which split it into new lines.
func (d *Document) Apply(ctx context.Context, e outline.Edit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.check(e.Start); err != nil {
		return err
	}
	if err := d.check(e.End); err != nil {
		return err
	}
	if e.End.Line < e.Start.Line || (e.End.Line == e.Start.Line && e.End.Col < e.Start.Col) {
		return fmt.Errorf("%w: end %d:%d before start %d:%d", ErrStalePosition,
			e.End.Line+1, e.End.Col, e.Start.Line+1, e.Start.Col)
	}

	prefix := d.lines[e.Start.Line][:e.Start.Col]
	suffix := d.lines[e.End.Line][e.End.Col:]
	text := strings.ReplaceAll(e.Text, "\r\n", "\n")
	parts := strings.Split(prefix+text+suffix, "\n")

	lines := make([]string, 0, len(d.lines)+len(parts)-1)
	lines = append(lines, d.lines[:e.Start.Line]...)
	lines = append(lines, parts...)
	lines = append(lines, d.lines[e.End.Line+1:]...)
	d.lines = lines
	d.version++
	d.applied++
	return nil
}

func (d *Document) check(p outline.Position) error {
	if p.Line < 0 || p.Line >= len(d.lines) {
		return fmt.Errorf("%w: line %d of %d", ErrStalePosition, p.Line+1, len(d.lines))
	}
	if p.Col < 0 || p.Col > len(d.lines[p.Line]) {
		return fmt.Errorf("%w: column %d on line %d of length %d", ErrStalePosition,
			p.Col, p.Line+1, len(d.lines[p.Line]))
	}
	return nil
}

// Selections returns the current selections. There is always at least one.
func (d *Document) Selections() []outline.Selection {
	return append([]outline.Selection(nil), d.sels...)
}

// SetSelections replaces the selections, clamping each end into the
// document. An empty slice resets to the start of the document.
func (d *Document) SetSelections(sels []outline.Selection) {
	if len(sels) == 0 {
		d.sels = []outline.Selection{{}}
		return
	}
	d.sels = make([]outline.Selection, len(sels))
	for i, s := range sels {
		d.sels[i] = outline.Selection{Start: d.clamp(s.Start), End: d.clamp(s.End)}
	}
}

// SetCursor collapses the selections to a single caret at p.
func (d *Document) SetCursor(p outline.Position) {
	p = d.clamp(p)
	d.sels = []outline.Selection{{Start: p, End: p}}
}

// Cursor returns the active end of the first selection.
func (d *Document) Cursor() outline.Position {
	return d.sels[0].Start
}

func (d *Document) clamp(p outline.Position) outline.Position {
	p.Line = max(0, min(p.Line, len(d.lines)-1))
	p.Col = max(0, min(p.Col, len(d.lines[p.Line])))
	return p
}
