package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/orgtree/internal/doctree"
)

// CSVParser handles CSV files. Every data row becomes a checklist item; a
// section column groups rows under headings and a status column ticks them.
type CSVParser struct{}

var (
	csvTextColumns    = []string{"task", "title", "name", "item", "summary", "description"}
	csvStatusColumns  = []string{"done", "completed", "status", "state", "checked"}
	csvSectionColumns = []string{"section", "group", "category", "project", "list"}
	csvDoneValues     = map[string]bool{
		"x": true, "y": true, "yes": true, "true": true, "1": true,
		"done": true, "complete": true, "completed": true, "closed": true, "finished": true,
	}
)

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := doctree.NewBuilder(trimExt(filename))
	if len(records) == 0 {
		return b.Tree(), nil
	}

	// First row is headers.
	headers := records[0]
	textCol := findColumn(headers, csvTextColumns)
	if textCol < 0 {
		textCol = 0
	}
	statusCol := findColumn(headers, csvStatusColumns)
	sectionCol := findColumn(headers, csvSectionColumns)

	section := ""
	for i, row := range records[1:] {
		if sectionCol >= 0 && sectionCol < len(row) && row[sectionCol] != section {
			section = row[sectionCol]
			b.Heading(1, section, i+2)
		}
		blk := doctree.Block{Kind: doctree.Bullet, Task: true, Line: i + 2} // 1-indexed, skip header
		if textCol < len(row) {
			blk.Text = row[textCol]
		}
		if statusCol >= 0 && statusCol < len(row) {
			blk.Checked = csvDoneValues[strings.ToLower(strings.TrimSpace(row[statusCol]))]
		}
		if strings.TrimSpace(blk.Text) == "" {
			continue
		}
		b.Item(blk)
	}
	return b.Tree(), nil
}

func findColumn(headers, names []string) int {
	for _, name := range names {
		for i, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return -1
}
