package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/orgtree/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. GFM task list items
// become checkbox items.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.TaskList))
	doc := md.Parser().Parse(text.NewReader(src))

	b := doctree.NewBuilder(trimExt(filename))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			b.Heading(node.Level, extractText(node, src), lineOf(node, src))
		case *ast.List:
			walkList(b, node, 0, src)
		default:
			b.Paragraph(extractText(n, src), lineOf(n, src))
		}
	}
	return b.Tree(), nil
}

// walkList emits each item of list, then its nested lists one level deeper.
func walkList(b *doctree.Builder, list *ast.List, depth int, src []byte) {
	kind := doctree.Bullet
	if list.IsOrdered() {
		kind = doctree.Ordered
	}
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		blk := doctree.Block{Kind: kind, Depth: depth}
		var nested []*ast.List
		var parts []string
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if l, ok := c.(*ast.List); ok {
				nested = append(nested, l)
				continue
			}
			if blk.Line == 0 {
				blk.Line = lineOf(c, src)
			}
			if cb, ok := c.FirstChild().(*extast.TaskCheckBox); ok && len(parts) == 0 {
				blk.Task = true
				blk.Checked = cb.IsChecked
			}
			if t := extractText(c, src); t != "" {
				parts = append(parts, strings.ReplaceAll(t, "\n", " "))
			}
		}
		blk.Text = strings.Join(parts, " ")
		b.Item(blk)
		for _, l := range nested {
			walkList(b, l, depth+1, src)
		}
	}
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	collectInline(n, src, &buf)
	return strings.TrimSpace(buf.String())
}

func collectInline(n ast.Node, src []byte, buf *bytes.Buffer) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *extast.TaskCheckBox:
		default:
			// Recurse for nested inlines and container blocks.
			collectInline(c, src, buf)
			if c.Type() == ast.TypeBlock {
				buf.WriteByte('\n')
			}
		}
	}
}

// lineOf returns the 1-based source line a block starts on, 0 if unknown.
func lineOf(n ast.Node, src []byte) int {
	if n.Type() != ast.TypeBlock || n.Lines().Len() == 0 {
		return 0
	}
	off := n.Lines().At(0).Start
	return bytes.Count(src[:off], []byte{'\n'}) + 1
}
