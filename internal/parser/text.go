package parser

import (
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/orgtree/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs and
// bullet or numbered lines become list items.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b := doctree.NewBuilder(trimExt(filename))
	addTextBlocks(b, strings.ReplaceAll(string(data), "\r\n", "\n"), 0)
	return b.Tree(), nil
}

// indentWidth is the number of leading spaces per list level.
const indentWidth = 2

var (
	bulletRe = regexp.MustCompile(`^(\s*)(?:[-•▪◦*+]|(\d+)[.)])\s+(.*)$`)
	taskRe   = regexp.MustCompile(`^(?:\[([ xX])\]|([☐☑☒]))\s*(.*)$`)
)

// addTextBlocks splits text into paragraphs and list items. page is recorded
// as the source line of every block when non-zero.
func addTextBlocks(b *doctree.Builder, text string, page int) {
	var para []string
	lineNo := func(i int) int {
		if page > 0 {
			return page
		}
		return i + 1
	}
	start := 0
	flush := func() {
		if len(para) > 0 {
			b.Paragraph(strings.Join(para, "\n"), lineNo(start))
		}
		para = para[:0]
	}
	for i, line := range strings.Split(text, "\n") {
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			if strings.TrimSpace(line) == "" {
				flush()
				continue
			}
			if len(para) == 0 {
				start = i
			}
			para = append(para, strings.TrimSpace(line))
			continue
		}
		flush()
		blk := doctree.Block{
			Kind:  doctree.Bullet,
			Depth: len(strings.ReplaceAll(m[1], "\t", "  ")) / indentWidth,
			Text:  m[3],
			Line:  lineNo(i),
		}
		if m[2] != "" {
			blk.Kind = doctree.Ordered
		}
		if t := taskRe.FindStringSubmatch(blk.Text); t != nil {
			blk.Task = true
			blk.Checked = strings.EqualFold(t[1], "x") || t[2] == "☑" || t[2] == "☒"
			blk.Text = t[3]
		}
		b.Item(blk)
	}
	flush()
}
