// Package doctree holds the section tree used to import documents into
// outline text and to report on existing outlines. Trees are built per call
// and discarded; the outline engine never reads them.
package doctree

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for the preamble)
	Level    int        // Heading level in the source (0 for the preamble)
	Page     int        // Source page or line (0 if N/A)
	Body     []Block    // Paragraphs and list items, in source order
	Children []*DocNode // Subsections
}

// BlockKind distinguishes paragraphs from list items.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Bullet
	Ordered
)

// Block is one paragraph or list item inside a section.
type Block struct {
	Kind    BlockKind
	Depth   int  // List nesting depth, 0 for top-level items
	Task    bool // Item carries a checkbox
	Checked bool
	Text    string
	Line    int // Source line, 1-based (0 if N/A)
}

// Tasks counts the checkbox items directly in n's body.
func (n *DocNode) Tasks() (total, done int) {
	for _, b := range n.Body {
		if !b.Task {
			continue
		}
		total++
		if b.Checked {
			done++
		}
	}
	return total, done
}

// Text joins the paragraphs of n's body.
func (n *DocNode) Text() string {
	var s string
	for _, b := range n.Body {
		if b.Kind != Paragraph {
			continue
		}
		if s != "" {
			s += "\n\n"
		}
		s += b.Text
	}
	return s
}
