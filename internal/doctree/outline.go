package doctree

import (
	"regexp"

	"github.com/dgallion1/orgtree/internal/outline"
)

var itemRe = regexp.MustCompile(`^[ \t]*(?:[-+*]|\d+[.)])(?:[ \t]+(?:\[[^\]/%0-9]\](?:[ \t]+|$))?|$)`)

// FromOutline builds the section tree of outline text. Item depth is the
// nesting level implied by indentation, reset at every heading.
func FromOutline(title string, lines []string, marker byte) *DocTree {
	b := NewBuilder(title)
	var indents []int
	for i, line := range lines {
		if lvl := outline.HeadingLevel(line, marker); lvl > 0 {
			b.Heading(lvl, line[lvl+1:], i+1)
			indents = indents[:0]
			continue
		}
		if outline.IsBlank(line) {
			continue
		}
		loc := itemRe.FindStringIndex(line)
		if loc == nil {
			b.Paragraph(line, i+1)
			continue
		}

		ind := outline.Indent(line)
		for len(indents) > 0 && indents[len(indents)-1] > ind {
			indents = indents[:len(indents)-1]
		}
		if len(indents) == 0 || indents[len(indents)-1] < ind {
			indents = append(indents, ind)
		}

		blk := Block{
			Kind:  Bullet,
			Depth: len(indents) - 1,
			Text:  line[loc[1]:],
			Line:  i + 1,
		}
		if outline.IsNumbered(line) {
			blk.Kind = Ordered
		}
		if outline.HasCheckbox(line) {
			blk.Task = true
			blk.Checked = outline.Classify(line) == outline.Checked
		}
		b.Item(blk)
	}
	return b.Tree()
}
