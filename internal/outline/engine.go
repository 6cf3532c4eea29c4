package outline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// DefaultHeadingMarker starts heading lines unless overridden.
const DefaultHeadingMarker = '*'

// Engine runs hierarchy queries and commands against a single buffer.
// An Engine is not safe for concurrent use; callers serialize commands
// per document.
type Engine struct {
	buf    Buffer
	marker byte
	logger *slog.Logger
	edits  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithHeadingMarker sets the character that starts heading lines.
func WithHeadingMarker(m byte) Option {
	return func(e *Engine) {
		if m != 0 && m != ' ' && m != '\t' {
			e.marker = m
		}
	}
}

// WithLogger sets the logger used for cascade tracing.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Engine bound to buf.
func New(buf Buffer, opts ...Option) *Engine {
	e := &Engine{
		buf:    buf,
		marker: DefaultHeadingMarker,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Buffer returns the buffer the engine edits.
func (e *Engine) Buffer() Buffer { return e.buf }

// Marker returns the heading marker character.
func (e *Engine) Marker() byte { return e.marker }

// Edits returns the number of edits applied since the engine was created.
func (e *Engine) Edits() int { return e.edits }

func (e *Engine) apply(ctx context.Context, ed Edit) error {
	if err := e.buf.Apply(ctx, ed); err != nil {
		e.logger.Warn("edit rejected", "line", ed.Start.Line+1, "error", err)
		return fmt.Errorf("%w at line %d: %w", ErrEditRejected, ed.Start.Line+1, err)
	}
	e.edits++
	return nil
}

// replaceSpan rewrites bytes [from, to) of row. Identical text is not written.
func (e *Engine) replaceSpan(ctx context.Context, row, from, to int, text string) error {
	line := e.buf.Line(row)
	if to <= len(line) && line[from:to] == text {
		return nil
	}
	return e.apply(ctx, Edit{
		Start: Position{Line: row, Col: from},
		End:   Position{Line: row, Col: to},
		Text:  text,
	})
}

// insertLine inserts text as a new line at row, shifting row and below down.
func (e *Engine) insertLine(ctx context.Context, row int, text string) error {
	n := e.buf.LineCount()
	if n == 0 {
		return e.apply(ctx, Edit{Text: text})
	}
	if row < n {
		return e.apply(ctx, Edit{
			Start: Position{Line: row},
			End:   Position{Line: row},
			Text:  text + "\n",
		})
	}
	last := n - 1
	end := Position{Line: last, Col: len(e.buf.Line(last))}
	return e.apply(ctx, Edit{Start: end, End: end, Text: "\n" + text})
}

func (e *Engine) cursor() Position {
	sels := e.buf.Selections()
	if len(sels) == 0 {
		return Position{}
	}
	return sels[0].Start
}

func (e *Engine) validRow(row int) error {
	if row < 0 || row >= e.buf.LineCount() {
		return fmt.Errorf("%w: line %d", ErrInvalidPosition, row+1)
	}
	return nil
}
