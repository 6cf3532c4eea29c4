package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dgallion1/orgtree/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Heading styles open sections and numbered
// paragraphs become list items at their numbering level.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "orgtree-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	b := doctree.NewBuilder(trimExt(filename))
	for i, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if level := docxHeadingLevel(para); level > 0 {
			b.Heading(level, text, i+1)
			continue
		}
		if depth, ok := docxListLevel(para); ok {
			blk := doctree.Block{Kind: doctree.Bullet, Depth: depth, Line: i + 1}
			blk.Task, blk.Checked, blk.Text = splitTaskMarker(text)
			b.Item(blk)
			continue
		}
		b.Paragraph(text, i+1)
	}
	return b.Tree(), nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	level, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
	if err != nil || level < 1 || level > 9 {
		return 0
	}
	return level
}

// docxListLevel reports the numbering level of a list paragraph.
func docxListLevel(para *docx.Paragraph) (int, bool) {
	if para.Properties == nil {
		return 0, false
	}
	if np := para.Properties.NumProperties; np != nil {
		if np.Ilvl == nil {
			return 0, true
		}
		lvl, err := strconv.Atoi(np.Ilvl.Val)
		if err != nil {
			return 0, true
		}
		return lvl, true
	}
	if para.Properties.Style != nil && strings.HasPrefix(strings.ToLower(para.Properties.Style.Val), "listparagraph") {
		return 0, true
	}
	return 0, false
}

// splitTaskMarker recognizes a leading ballot box or bracket checkbox.
func splitTaskMarker(text string) (task, checked bool, rest string) {
	for prefix, done := range map[string]bool{
		"☐": false, "☑": true, "☒": true,
		"[ ]": false, "[x]": true, "[X]": true,
	} {
		if strings.HasPrefix(text, prefix) {
			return true, done, strings.TrimSpace(strings.TrimPrefix(text, prefix))
		}
	}
	return false, false, text
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
