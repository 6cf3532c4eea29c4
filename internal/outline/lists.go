package outline

import (
	"context"
	"regexp"
	"strconv"
)

// numberedRe matches "<indent><integer><. or )>" followed by whitespace or
// end of line. Group 1 is the indent, group 2 the number, group 3 the
// separator.
var numberedRe = regexp.MustCompile(`^([ \t]*)(\d+)([.)])(?:[ \t]|$)`)

// IsNumbered reports whether line is an ordered-list item.
func IsNumbered(line string) bool {
	return numberedRe.MatchString(line)
}

// ItemNumber returns the number of an ordered-list line.
func ItemNumber(line string) (int, bool) {
	m := numberedRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return n, true
}

type listScope struct {
	indent int
	next   int
}

// listScan tracks the expected number per indentation level while walking a
// scope top to bottom.
type listScan struct {
	cur   listScope
	stack []listScope
}

func newListScan(indent int) *listScan {
	return &listScan{cur: listScope{indent: indent, next: 1}}
}

// visit moves the scan to a line at depth d and returns that depth's scope.
// Deeper lines open a new scope numbered from 1; shallower lines resume the
// counter their scope had reached.
func (s *listScan) visit(d int) *listScope {
	for d < s.cur.indent && len(s.stack) > 0 {
		s.cur = s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
	}
	switch {
	case d > s.cur.indent:
		s.stack = append(s.stack, s.cur)
		s.cur = listScope{indent: d, next: 1}
	case d < s.cur.indent:
		s.cur = listScope{indent: d, next: 1}
	}
	return &s.cur
}

// listBounds returns the scan start row, the exclusive end row and the
// starting indentation of the list scope around cursor: from the cursor
// heading, or the heading above it, to the next heading.
func (e *Engine) listBounds(cursor int) (start, end, indent int) {
	anchor := cursor
	if !e.isHeading(cursor) {
		anchor = e.FindParent(cursor)
	}
	if anchor != NoParent {
		indent = Indent(e.buf.Line(anchor))
	}
	return anchor + 1, e.FindSectionEnd(anchor), indent
}

// Renumber rewrites the numbers of every ordered list in the scope around
// cursor so each run counts up from 1. Separators and item text are kept;
// lines already correct are not touched.
func (e *Engine) Renumber(ctx context.Context, cursor int) error {
	if err := e.validRow(cursor); err != nil {
		return err
	}
	start, end, indent := e.listBounds(cursor)
	scan := newListScan(indent)
	for r := start; r < end; r++ {
		line := e.buf.Line(r)
		if IsBlank(line) {
			continue
		}
		sc := scan.visit(Indent(line))
		m := numberedRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		want := strconv.Itoa(sc.next)
		if line[m[4]:m[5]] != want {
			e.logger.Debug("renumber", "line", r+1, "from", line[m[4]:m[5]], "to", want)
			if err := e.replaceSpan(ctx, r, m[4], m[5], want); err != nil {
				return err
			}
		}
		sc.next++
	}
	return nil
}

// Append inserts a new ordered-list item. On a numbered line the item goes
// after the last item of the cursor's run, including nested content. On a
// heading or plain line it extends the first run below the cursor in the
// scope, falling back to the line below the cursor when there is none. A
// blank line takes the item in place. The cursor is left after the new
// "n. " prefix and the scope renumbered.
func (e *Engine) Append(ctx context.Context, cursor int) error {
	if err := e.validRow(cursor); err != nil {
		return err
	}
	start, end, scopeIndent := e.listBounds(cursor)
	line := e.buf.Line(cursor)

	var row int
	var indent string
	switch {
	case IsNumbered(line):
		indent = IndentString(line)
		row = e.runEnd(cursor, end) + 1
	case IsBlank(line):
		row = cursor
	default:
		if first := e.nextNumbered(cursor+1, end); first >= 0 {
			indent = IndentString(e.buf.Line(first))
			row = e.runEnd(first, end) + 1
			break
		}
		if !e.isHeading(cursor) {
			indent = IndentString(line)
		}
		row = cursor + 1
	}

	// Number the new item by replaying the scan up to the insertion row.
	scan := newListScan(scopeIndent)
	for r := start; r < row && r < end; r++ {
		l := e.buf.Line(r)
		if IsBlank(l) {
			continue
		}
		sc := scan.visit(Indent(l))
		if IsNumbered(l) {
			sc.next++
		}
	}
	n := scan.visit(len(indent)).next

	item := indent + strconv.Itoa(n) + ". "
	e.logger.Debug("append item", "line", row+1, "number", n)
	if err := e.insertLine(ctx, row, item); err != nil {
		return err
	}
	e.buf.SetCursor(Position{Line: row, Col: len(item)})
	return e.Renumber(ctx, row)
}

// runEnd returns the last row of the numbered run containing first: every
// later item at its depth and the deeper lines between them.
func (e *Engine) runEnd(first, end int) int {
	target := Indent(e.buf.Line(first))
	last := first
	for r := first + 1; r < end; r++ {
		l := e.buf.Line(r)
		if IsBlank(l) {
			continue
		}
		d := Indent(l)
		if d < target || (d == target && !IsNumbered(l)) {
			break
		}
		last = r
	}
	return last
}

// nextNumbered returns the first numbered row in [from, end), or -1.
func (e *Engine) nextNumbered(from, end int) int {
	for r := from; r < end; r++ {
		if !e.isHeading(r) && IsNumbered(e.buf.Line(r)) {
			return r
		}
	}
	return -1
}
