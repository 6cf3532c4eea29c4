// Package progress reports checkbox completion per outline section.
package progress

import (
	"github.com/dgallion1/orgtree/internal/doctree"
)

// Section is the completion of one heading and everything below it.
type Section struct {
	Title      string   `json:"title"`
	Breadcrumb []string `json:"breadcrumb"` // Heading hierarchy, e.g. ["Release", "Docs"]
	Depth      int      `json:"depth"`
	Line       int      `json:"line,omitempty"`

	Total int `json:"total"` // Tasks directly in the section body
	Done  int `json:"done"`

	NestedTotal int `json:"nested_total"` // Including subsections
	NestedDone  int `json:"nested_done"`
	Percent     int `json:"percent"` // Of the nested counts, truncated
}

// Report is the completion of a whole document.
type Report struct {
	Title    string    `json:"title"`
	Total    int       `json:"total"`
	Done     int       `json:"done"`
	Percent  int       `json:"percent"`
	Sections []Section `json:"sections"`
}

// Build walks tree and reports every section in document order. The
// untitled preamble is counted in the document totals only.
func Build(tree *doctree.DocTree) Report {
	r := Report{Title: tree.Title, Sections: []Section{}}
	for _, child := range tree.Children {
		total, done := walkNode(child, nil, 1, &r.Sections)
		r.Total += total
		r.Done += done
	}
	r.Percent = percent(r.Done, r.Total)
	return r
}

// walkNode records node and its subsections, returning the nested counts.
func walkNode(node *doctree.DocNode, breadcrumb []string, depth int, out *[]Section) (int, int) {
	total, done := node.Tasks()
	if node.Title == "" && node.Level == 0 {
		return total, done
	}

	// Build breadcrumb for this node.
	bc := append(copyBreadcrumb(breadcrumb), node.Title)
	idx := len(*out)
	*out = append(*out, Section{
		Title:      node.Title,
		Breadcrumb: bc,
		Depth:      depth,
		Line:       node.Page,
		Total:      total,
		Done:       done,
	})

	nestedTotal, nestedDone := total, done
	for _, child := range node.Children {
		t, d := walkNode(child, bc, depth+1, out)
		nestedTotal += t
		nestedDone += d
	}

	s := &(*out)[idx]
	s.NestedTotal = nestedTotal
	s.NestedDone = nestedDone
	s.Percent = percent(nestedDone, nestedTotal)
	return nestedTotal, nestedDone
}

func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return done * 100 / total
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
