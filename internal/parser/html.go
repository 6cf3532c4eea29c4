package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/orgtree/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Lists keep their nesting and
// <input type="checkbox"> inside an item makes it a task.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	b := doctree.NewBuilder(trimExt(filename))
	// Extract title from <title> tag if present.
	if title := findTitle(doc); title != "" {
		b.SetTitle(title)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				b.Heading(level, textContent(n), 0)
				return // Don't recurse into heading children (already extracted text).
			}

			// Skip non-content elements.
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "ul", "ol":
				walkHTMLList(b, n, 0)
				return
			case "p", "td", "blockquote", "pre":
				b.Paragraph(textContent(n), 0)
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return b.Tree(), nil
}

func walkHTMLList(b *doctree.Builder, list *html.Node, depth int) {
	kind := doctree.Bullet
	if list.Data == "ol" {
		kind = doctree.Ordered
	}
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		blk := doctree.Block{Kind: kind, Depth: depth}
		if box := findCheckbox(li); box != nil {
			blk.Task = true
			blk.Checked = hasAttr(box, "checked")
		}
		blk.Text = itemText(li)
		b.Item(blk)
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				walkHTMLList(b, c, depth+1)
			}
		}
	}
}

// itemText is the text of li without its nested lists.
func itemText(li *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(li)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// findCheckbox returns the first checkbox input in li outside nested lists.
func findCheckbox(li *html.Node) *html.Node {
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data == "ul" || c.Data == "ol" {
			continue
		}
		if c.Data == "input" && strings.EqualFold(attr(c, "type"), "checkbox") {
			return c
		}
		if box := findCheckbox(c); box != nil {
			return box
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
