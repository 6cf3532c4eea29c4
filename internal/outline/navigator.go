package outline

// LineKind selects which lines count as candidate children.
type LineKind int

const (
	KindCheckbox LineKind = iota
	KindNumbered
)

func (k LineKind) String() string {
	if k == KindNumbered {
		return "numbered"
	}
	return "checkbox"
}

func (e *Engine) isHeading(row int) bool {
	return IsHeading(e.buf.Line(row), e.marker)
}

// isKind reports whether row is a non-heading line of kind.
func (e *Engine) isKind(row int, kind LineKind) bool {
	line := e.buf.Line(row)
	if IsHeading(line, e.marker) {
		return false
	}
	switch kind {
	case KindNumbered:
		return numberedRe.MatchString(line)
	default:
		return checkboxRe.MatchString(line)
	}
}

// depth is the indentation used for scope comparisons. Headings and the
// document start sit above every indentation, so column-0 items under a
// heading are its children.
func (e *Engine) depth(row int) int {
	if row == NoParent || e.isHeading(row) {
		return -1
	}
	return Indent(e.buf.Line(row))
}

// FindParent returns the nearest heading strictly above row, or NoParent.
func (e *Engine) FindParent(row int) int {
	if row > e.buf.LineCount() {
		row = e.buf.LineCount()
	}
	for r := row - 1; r >= 0; r-- {
		if e.isHeading(r) {
			return r
		}
	}
	return NoParent
}

// FindSectionEnd returns the first heading row after row, or the line count.
// Pass NoParent to search from the start of the document.
func (e *Engine) FindSectionEnd(row int) int {
	n := e.buf.LineCount()
	for r := row + 1; r < n; r++ {
		if e.isHeading(r) {
			return r
		}
	}
	return n
}

// FindChildren returns the direct children of row among lines of kind, and
// the exclusive end of the scanned region. The scan stops at the next
// heading or at the first candidate not deeper than row. The first candidate
// fixes the child depth; deeper candidates are grandchildren and skipped.
func (e *Engine) FindChildren(row int, kind LineKind) (children []int, end int) {
	anchor := e.depth(row)
	childDepth, fixed := 0, false
	n := e.buf.LineCount()
	r := row + 1
	for ; r < n; r++ {
		line := e.buf.Line(r)
		if IsHeading(line, e.marker) {
			break
		}
		if IsBlank(line) || !e.isKind(r, kind) {
			continue
		}
		d := Indent(line)
		if d <= anchor {
			break
		}
		if !fixed {
			childDepth, fixed = d, true
		}
		if d == childDepth {
			children = append(children, r)
		}
	}
	return children, r
}

// FindSiblings returns every line below parent, up to the first non-blank
// line not deeper than parent or the next heading, whose indentation equals
// child's. The result includes child itself.
func (e *Engine) FindSiblings(child, parent int) []int {
	pd := e.depth(parent)
	cd := Indent(e.buf.Line(child))
	var sibs []int
	n := e.buf.LineCount()
	for r := parent + 1; r < n; r++ {
		line := e.buf.Line(r)
		if IsBlank(line) {
			continue
		}
		if IsHeading(line, e.marker) {
			break
		}
		d := Indent(line)
		if d <= pd {
			break
		}
		if d == cd {
			sibs = append(sibs, r)
		}
	}
	return sibs
}

// FindOwner returns the structural parent used for upward propagation: the
// nearest line of kind above row that is shallower than row, or the nearest
// heading, whichever comes first. For KindCheckbox a shallower line carrying
// only a summary token also qualifies. For a heading row it is the nearest
// heading of a lower level.
func (e *Engine) FindOwner(row int, kind LineKind) int {
	line := e.buf.Line(row)
	if lvl := HeadingLevel(line, e.marker); lvl > 0 {
		for r := row - 1; r >= 0; r-- {
			if l := HeadingLevel(e.buf.Line(r), e.marker); l > 0 && l < lvl {
				return r
			}
		}
		return NoParent
	}
	d := Indent(line)
	for r := row - 1; r >= 0; r-- {
		above := e.buf.Line(r)
		if IsHeading(above, e.marker) {
			return r
		}
		if IsBlank(above) {
			continue
		}
		if Indent(above) < d && (e.isKind(r, kind) || (kind == KindCheckbox && HasSummary(above))) {
			return r
		}
	}
	return NoParent
}
