package outline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// memBuffer is a minimal in-memory Buffer for engine tests.
type memBuffer struct {
	lines   []string
	sels    []Selection
	applied int
	failAt  int // reject the edit with this 1-based sequence number; 0 never
}

func newMem(lines ...string) *memBuffer {
	if len(lines) == 0 {
		lines = []string{""}
	}
	return &memBuffer{lines: append([]string(nil), lines...)}
}

func (b *memBuffer) LineCount() int      { return len(b.lines) }
func (b *memBuffer) Line(row int) string { return b.lines[row] }

func (b *memBuffer) Apply(_ context.Context, e Edit) error {
	if b.failAt > 0 && b.applied+1 == b.failAt {
		return errors.New("buffer closed")
	}
	prefix := b.lines[e.Start.Line][:e.Start.Col]
	suffix := b.lines[e.End.Line][e.End.Col:]
	parts := strings.Split(prefix+e.Text+suffix, "\n")
	out := append([]string(nil), b.lines[:e.Start.Line]...)
	out = append(out, parts...)
	out = append(out, b.lines[e.End.Line+1:]...)
	b.lines = out
	b.applied++
	return nil
}

func (b *memBuffer) Selections() []Selection { return b.sels }

func (b *memBuffer) SetCursor(p Position) {
	b.sels = []Selection{{Start: p, End: p}}
}

func (b *memBuffer) at(line int) *memBuffer {
	b.SetCursor(Position{Line: line})
	return b
}

func assertLines(t *testing.T, b *memBuffer, want ...string) {
	t.Helper()
	if len(b.lines) != len(want) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(want), len(b.lines), strings.Join(b.lines, "\n"))
	}
	for i := range want {
		if b.lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i+1, want[i], b.lines[i])
		}
	}
}
