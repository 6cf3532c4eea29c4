package doctree

import (
	"strconv"
	"strings"

	"github.com/dgallion1/orgtree/internal/outline"
)

// RenderOptions controls Render.
type RenderOptions struct {
	Marker    byte // Heading marker, '*' if zero
	Summaries bool // Add "[/]" to headings and parent items that own tasks
}

// Render writes tree as outline text: one marker per tree depth for
// headings, two spaces per list depth for items. Summary tokens are left
// empty for the engine to fill in.
func Render(tree *DocTree, opts RenderOptions) string {
	if opts.Marker == 0 {
		opts.Marker = outline.DefaultHeadingMarker
	}
	r := &renderer{opts: opts}
	if tree.Title != "" && opts.Marker == '*' {
		r.line("#+TITLE: " + tree.Title)
	}
	for _, n := range tree.Children {
		r.node(n, 1)
	}
	return r.w.String()
}

type renderer struct {
	opts  RenderOptions
	w     strings.Builder
	blank bool // last line written was blank
	lines int
}

func (r *renderer) line(s string) {
	r.w.WriteString(s)
	r.w.WriteByte('\n')
	r.blank = s == ""
	r.lines++
}

func (r *renderer) separate() {
	if r.lines > 0 && !r.blank {
		r.line("")
	}
}

func (r *renderer) node(n *DocNode, depth int) {
	headed := n.Title != "" || n.Level > 0
	if headed {
		r.separate()
		h := strings.Repeat(string(r.opts.Marker), depth) + " " + n.Title
		if r.opts.Summaries && hasTopLevelTask(n.Body) {
			h += " [/]"
		}
		r.line(h)
	}

	var counters []int
	prev := Paragraph
	for i, b := range n.Body {
		if b.Kind == Paragraph {
			r.separate()
			for _, l := range strings.Split(b.Text, "\n") {
				if outline.IsHeading(l, r.opts.Marker) {
					l = " " + l
				}
				r.line(l)
			}
			counters = counters[:0]
			prev = Paragraph
			continue
		}
		if prev == Paragraph && (i > 0 || !headed) {
			r.separate()
		}
		for len(counters) <= b.Depth {
			counters = append(counters, 0)
		}
		counters = counters[:b.Depth+1]

		prefix := "- "
		if b.Kind == Ordered {
			counters[b.Depth]++
			prefix = strconv.Itoa(counters[b.Depth]) + ". "
		} else {
			counters[b.Depth] = 0
		}
		if b.Task {
			if b.Checked {
				prefix += "[x] "
			} else {
				prefix += "[ ] "
			}
		}
		text := b.Text
		if r.opts.Summaries && b.Task && ownsTasks(n.Body, i) {
			text += " [/]"
		}
		r.line(strings.Repeat("  ", b.Depth) + prefix + text)
		prev = b.Kind
	}

	for _, c := range n.Children {
		r.node(c, depth+1)
	}
}

func hasTopLevelTask(body []Block) bool {
	for _, b := range body {
		if b.Task && b.Depth == 0 {
			return true
		}
	}
	return false
}

// ownsTasks reports whether the item at i has task items nested under it.
func ownsTasks(body []Block, i int) bool {
	d := body[i].Depth
	for _, b := range body[i+1:] {
		if b.Kind == Paragraph || b.Depth <= d {
			return false
		}
		if b.Task {
			return true
		}
	}
	return false
}
