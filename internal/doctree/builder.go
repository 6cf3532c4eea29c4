package doctree

import "strings"

// Builder assembles a DocTree from a stream of headings and blocks. Headings
// nest under the nearest open heading with a lower level.
type Builder struct {
	tree  *DocTree
	root  *DocNode
	stack []stackEntry
}

type stackEntry struct {
	node  *DocNode
	level int
}

// NewBuilder starts a tree titled title.
func NewBuilder(title string) *Builder {
	root := &DocNode{Title: title}
	return &Builder{
		tree:  &DocTree{Title: title},
		root:  root,
		stack: []stackEntry{{node: root, level: 0}},
	}
}

// SetTitle replaces the document title.
func (b *Builder) SetTitle(title string) {
	b.tree.Title = title
}

// Heading opens a section at level (1 for top-level). page is the source
// page or line, 0 if unknown.
func (b *Builder) Heading(level int, title string, page int) {
	if level < 1 {
		level = 1
	}
	node := &DocNode{Title: strings.TrimSpace(title), Level: level, Page: page}
	// Pop until the top of the stack is a lower level.
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, node)
	b.stack = append(b.stack, stackEntry{node: node, level: level})
}

// Paragraph appends text to the current section. Blank text is dropped.
func (b *Builder) Paragraph(text string, line int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.add(Block{Kind: Paragraph, Text: text, Line: line})
}

// Item appends a list item to the current section.
func (b *Builder) Item(blk Block) {
	blk.Text = strings.TrimSpace(blk.Text)
	if blk.Kind == Paragraph {
		blk.Kind = Bullet
	}
	if blk.Depth < 0 {
		blk.Depth = 0
	}
	b.add(blk)
}

func (b *Builder) add(blk Block) {
	top := b.stack[len(b.stack)-1].node
	top.Body = append(top.Body, blk)
}

// Tree returns the finished tree. Content before the first heading becomes
// an untitled leading section.
func (b *Builder) Tree() *DocTree {
	b.tree.Children = b.root.Children
	if len(b.root.Body) > 0 {
		pre := &DocNode{Body: b.root.Body}
		b.tree.Children = append([]*DocNode{pre}, b.root.Children...)
	}
	return b.tree
}
