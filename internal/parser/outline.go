package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/orgtree/internal/doctree"
	"github.com/dgallion1/orgtree/internal/outline"
)

// OutlineParser reads outline text as it is, so existing outlines can be
// re-rendered or reported on.
type OutlineParser struct {
	Marker byte
}

func (p *OutlineParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	marker := p.Marker
	if marker == 0 {
		marker = outline.DefaultHeadingMarker
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	title := trimExt(filename)
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#+TITLE:") {
		title = strings.TrimSpace(strings.TrimPrefix(lines[0], "#+TITLE:"))
		lines[0] = ""
	}
	return doctree.FromOutline(title, lines, marker), nil
}
