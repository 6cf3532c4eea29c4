package outline

// NodeInfo describes the virtual node at one line. Line numbers are 1-based;
// 0 means none.
type NodeInfo struct {
	Line         int    `json:"line"`
	Text         string `json:"text"`
	Indent       int    `json:"indent"`
	HeadingLevel int    `json:"heading_level,omitempty"`
	Checkbox     string `json:"checkbox,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Number       int    `json:"number,omitempty"`
	Parent       int    `json:"parent"`
	Owner        int    `json:"owner"`
	Children     []int  `json:"children,omitempty"`
	Items        []int  `json:"items,omitempty"`
	Siblings     []int  `json:"siblings,omitempty"`
	NumChildren  int    `json:"num_children"`
	NumChecked   int    `json:"num_checked"`
}

// Inspect reports what the navigator sees at row.
func (e *Engine) Inspect(row int) (NodeInfo, error) {
	if err := e.validRow(row); err != nil {
		return NodeInfo{}, err
	}
	line := e.buf.Line(row)
	info := NodeInfo{
		Line:         row + 1,
		Text:         line,
		Indent:       Indent(line),
		HeadingLevel: HeadingLevel(line, e.marker),
		Parent:       e.FindParent(row) + 1,
	}
	if e.hasCheckbox(row) {
		info.Checkbox = e.State(row).String()
		info.Owner = e.FindOwner(row, KindCheckbox) + 1
	} else {
		info.Owner = e.FindOwner(row, KindNumbered) + 1
	}
	if start, end, ok := SummarySpan(line); ok {
		info.Summary = line[start:end]
	}
	if info.HeadingLevel == 0 {
		info.Number, _ = ItemNumber(line)
	}

	children, _ := e.FindChildren(row, KindCheckbox)
	info.Children = oneBased(children)
	items, _ := e.FindChildren(row, KindNumbered)
	info.Items = oneBased(items)
	info.NumChildren, info.NumChecked = e.RecalcSummary(row)
	if info.HeadingLevel == 0 && !IsBlank(line) {
		info.Siblings = oneBased(e.FindSiblings(row, e.FindParent(row)))
	}
	return info, nil
}

func oneBased(rows []int) []int {
	if len(rows) == 0 {
		return nil
	}
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r + 1
	}
	return out
}
