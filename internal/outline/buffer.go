// Package outline implements the indentation-scoped hierarchy engine:
// checkbox propagation, summary annotations and ordered-list renumbering
// over a live line buffer. No tree is kept between calls; every query
// re-scans the buffer.
package outline

import (
	"context"
	"errors"
)

var (
	// ErrEditRejected wraps any failure returned by Buffer.Apply. The
	// cascade that issued the edit stops at that step.
	ErrEditRejected = errors.New("edit rejected")
	// ErrInvalidState is returned when asked to write the Error state.
	ErrInvalidState = errors.New("invalid checkbox state")
	// ErrInvalidPosition is returned when a command's cursor is outside the buffer.
	ErrInvalidPosition = errors.New("position outside document")
	// ErrUnknownCommand is returned by ParseCommand and Run.
	ErrUnknownCommand = errors.New("unknown command")
)

// Position is a zero-based line and byte column.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Selection is a span of the document. Start is the active end.
type Selection struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Lines returns the first and last line covered by the selection.
func (s Selection) Lines() (first, last int) {
	first, last = s.Start.Line, s.End.Line
	if last < first {
		first, last = last, first
	}
	return first, last
}

// Edit replaces the text between Start and End. Start == End inserts.
type Edit struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
	Text  string   `json:"text"`
}

// Buffer is the line store the engine operates on. Apply must not return
// until the edit is visible to Line and LineCount.
type Buffer interface {
	LineCount() int
	Line(row int) string
	Apply(ctx context.Context, e Edit) error
	Selections() []Selection
	SetCursor(p Position)
}
