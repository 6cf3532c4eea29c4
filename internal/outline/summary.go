package outline

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

var summaryRe = regexp.MustCompile(`\[\d*[/%]\d*\]`)

// FormatSummary renders a summary token for the given counts, keeping the
// percent form when token already uses it. Percent truncates toward zero.
func FormatSummary(token string, numChecked, numChildren int) string {
	if strings.Contains(token, "%") {
		pct := 0
		if numChildren > 0 {
			pct = numChecked * 100 / numChildren
		}
		return "[" + strconv.Itoa(pct) + "%]"
	}
	return "[" + strconv.Itoa(numChecked) + "/" + strconv.Itoa(numChildren) + "]"
}

// SummarySpan returns the byte span of the first summary token on line.
func SummarySpan(line string) (start, end int, ok bool) {
	loc := summaryRe.FindStringIndex(line)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

// HasSummary reports whether line carries a summary token.
func HasSummary(line string) bool {
	return summaryRe.MatchString(line)
}

// rewriteSummary replaces the summary token on row. It reports false when
// the line has none.
func (e *Engine) rewriteSummary(ctx context.Context, row, numChecked, numChildren int) (bool, error) {
	line := e.buf.Line(row)
	start, end, ok := SummarySpan(line)
	if !ok {
		return false, nil
	}
	text := FormatSummary(line[start:end], numChecked, numChildren)
	return true, e.replaceSpan(ctx, row, start, end, text)
}
