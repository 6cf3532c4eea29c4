package outline

import "strings"

// NoParent is returned by the navigator when no enclosing line exists.
const NoParent = -1

// Indent returns the number of leading space and tab characters.
func Indent(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// IndentString returns the leading whitespace of line.
func IndentString(line string) string {
	return line[:Indent(line)]
}

// IsBlank reports whether line holds only whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// HeadingLevel returns the number of marker characters that open a heading
// line, or 0 when line is not a heading. A heading is one or more markers at
// column 0 followed by a space.
func HeadingLevel(line string, marker byte) int {
	n := 0
	for n < len(line) && line[n] == marker {
		n++
	}
	if n == 0 || n == len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

// IsHeading reports whether line is a heading for marker.
func IsHeading(line string, marker byte) bool {
	return HeadingLevel(line, marker) > 0
}
