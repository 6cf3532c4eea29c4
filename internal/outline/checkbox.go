package outline

import (
	"fmt"
	"regexp"
	"strings"
)

// checkboxRe matches a list line whose first token after the optional bullet
// is a single-character bracket. Group 1 is the glyph.
var checkboxRe = regexp.MustCompile(`^[ \t]*(?:[-+*]|\d+[.)])?[ \t]*\[([^\]/%0-9])\](?:[ \t]|$)`)

// State is the value of a checkbox. Error marks bracket content that is not
// a recognized glyph; it is a value, not a failure.
type State int

const (
	Unchecked State = iota
	Checked
	Indeterminate
	Error
)

var stateNames = [...]string{"unchecked", "checked", "indeterminate", "error"}

func (s State) String() string {
	if s < Unchecked || s > Error {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Glyph returns the character written between the brackets.
func (s State) Glyph() string {
	switch s {
	case Unchecked:
		return " "
	case Checked:
		return "x"
	case Indeterminate:
		return "-"
	}
	return "E"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts a state name or glyph.
func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseState accepts a state name or its glyph.
func ParseState(v string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "unchecked", "off", "[ ]":
		return Unchecked, nil
	case "checked", "on", "x", "[x]":
		return Checked, nil
	case "indeterminate", "partial", "-", "[-]":
		return Indeterminate, nil
	}
	if v == " " {
		return Unchecked, nil
	}
	return Error, fmt.Errorf("%w: %q", ErrInvalidState, v)
}

// stateOf maps a glyph character to its state.
func stateOf(glyph byte) State {
	switch glyph {
	case ' ':
		return Unchecked
	case 'x', 'X':
		return Checked
	case '-':
		return Indeterminate
	}
	return Error
}

// Classify returns the state of the first checkbox token on line. Lines with
// no token, or an unrecognized glyph, are Error.
func Classify(line string) State {
	start, end, ok := glyphSpan(line)
	if !ok || end-start != 1 {
		return Error
	}
	return stateOf(line[start])
}

// HasCheckbox reports whether line carries a checkbox token.
func HasCheckbox(line string) bool {
	return checkboxRe.MatchString(line)
}

// glyphSpan returns the byte span of the checkbox glyph, which may be a
// multi-byte rune.
func glyphSpan(line string) (start, end int, ok bool) {
	m := checkboxRe.FindStringSubmatchIndex(line)
	if m == nil {
		return 0, 0, false
	}
	return m[2], m[3], true
}

// InferTarget returns the state a toggle moves to from cur.
func InferTarget(cur State) State {
	if cur == Checked {
		return Unchecked
	}
	return Checked
}

// State returns the checkbox state of row. Headings and lines without a
// token are Error.
func (e *Engine) State(row int) State {
	if e.isHeading(row) {
		return Error
	}
	return Classify(e.buf.Line(row))
}

func (e *Engine) hasCheckbox(row int) bool {
	return e.isKind(row, KindCheckbox)
}

// RecalcSummary counts the checkbox children of row and how many are exactly
// Checked. Zero children means row is a leaf.
func (e *Engine) RecalcSummary(row int) (numChildren, numChecked int) {
	children, _ := e.FindChildren(row, KindCheckbox)
	for _, c := range children {
		if e.State(c) == Checked {
			numChecked++
		}
	}
	return len(children), numChecked
}

// aggregate derives a parent state from its child counts.
func aggregate(numChildren, numChecked int) State {
	switch numChecked {
	case numChildren:
		return Checked
	case 0:
		return Unchecked
	}
	return Indeterminate
}
