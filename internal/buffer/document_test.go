package buffer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/orgtree/internal/outline"
)

func TestParse_RoundTrip(t *testing.T) {
	for _, text := range []string{
		"",
		"one line",
		"a\nb\n",
		"a\r\nb\r\nc",
		"* H\n\n- [ ] x\n",
	} {
		if got := Parse(text).String(); got != text {
			t.Errorf("round trip %q: got %q", text, got)
		}
	}
}

func TestParse_AlwaysOneLine(t *testing.T) {
	d := Parse("")
	if d.LineCount() != 1 || d.Line(0) != "" {
		t.Errorf("expected a single empty line, got %d lines", d.LineCount())
	}
}

func TestApply_ReplaceWithinLine(t *testing.T) {
	d := Parse("- [ ] task")
	err := d.Apply(context.Background(), outline.Edit{
		Start: outline.Position{Line: 0, Col: 3},
		End:   outline.Position{Line: 0, Col: 4},
		Text:  "x",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if d.Line(0) != "- [x] task" {
		t.Errorf("expected checked line, got %q", d.Line(0))
	}
	if d.Version() != 1 || d.Applied() != 1 {
		t.Errorf("expected version 1 and 1 edit, got %d and %d", d.Version(), d.Applied())
	}
}

func TestApply_InsertLines(t *testing.T) {
	d := Parse("a\nc")
	err := d.Apply(context.Background(), outline.Edit{
		Start: outline.Position{Line: 1},
		End:   outline.Position{Line: 1},
		Text:  "b\n",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := d.String(); got != "a\nb\nc" {
		t.Errorf("expected inserted line, got %q", got)
	}

	end := outline.Position{Line: 2, Col: 1}
	if err := d.Apply(context.Background(), outline.Edit{Start: end, End: end, Text: "\nd"}); err != nil {
		t.Fatalf("Apply at end: %v", err)
	}
	if d.LineCount() != 4 || d.Line(3) != "d" {
		t.Errorf("expected appended line d, got %q", d.String())
	}
}

func TestApply_DeleteAcrossLines(t *testing.T) {
	d := Parse("one\ntwo\nthree")
	err := d.Apply(context.Background(), outline.Edit{
		Start: outline.Position{Line: 0, Col: 3},
		End:   outline.Position{Line: 1, Col: 3},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := d.String(); got != "one\nthree" {
		t.Errorf("expected joined lines, got %q", got)
	}
}

func TestApply_StalePosition(t *testing.T) {
	d := Parse("short")
	tests := []outline.Edit{
		{Start: outline.Position{Line: 3}, End: outline.Position{Line: 3}},
		{Start: outline.Position{Line: 0, Col: 9}, End: outline.Position{Line: 0, Col: 9}},
		{Start: outline.Position{Line: 0, Col: 3}, End: outline.Position{Line: 0, Col: 1}},
		{Start: outline.Position{Line: -1}, End: outline.Position{Line: 0}},
	}
	for _, e := range tests {
		if err := d.Apply(context.Background(), e); !errors.Is(err, ErrStalePosition) {
			t.Errorf("edit %+v: expected ErrStalePosition, got %v", e, err)
		}
	}
	if d.Version() != 0 {
		t.Errorf("rejected edits must not bump the version, got %d", d.Version())
	}
}

func TestApply_CanceledContext(t *testing.T) {
	d := Parse("x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Apply(ctx, outline.Edit{End: outline.Position{Col: 1}, Text: "y"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSelections_Clamp(t *testing.T) {
	d := Parse("ab\ncd")
	d.SetCursor(outline.Position{Line: 9, Col: 9})
	if got := d.Cursor(); got != (outline.Position{Line: 1, Col: 2}) {
		t.Errorf("expected clamped cursor 1:2, got %+v", got)
	}
	d.SetSelections(nil)
	if got := d.Selections(); len(got) != 1 || got[0] != (outline.Selection{}) {
		t.Errorf("expected reset selection, got %+v", got)
	}
}

func TestEngineOnDocument(t *testing.T) {
	d := Parse("* Tasks\n- [ ] Parent [0/0]\n  - [ ] a\n  - [ ] b\n  - [x] c\n")
	d.SetCursor(outline.Position{Line: 3})
	e := outline.New(d)
	if err := e.Run(context.Background(), outline.CmdToggleCheckbox); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	want := "* Tasks\n- [-] Parent [2/3]\n  - [ ] a\n  - [x] b\n  - [x] c\n"
	if got := d.String(); got != want {
		t.Errorf("unexpected document:\n%s", got)
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.org")

	d := Parse("* Todo\r\n- [ ] a\r\n")
	if err := SaveFile(path, d); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != filePerms {
		t.Errorf("expected mode %v, got %v", os.FileMode(filePerms), info.Mode().Perm())
	}

	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if err := SaveFile(path, d); err != nil {
		t.Fatalf("second SaveFile: %v", err)
	}
	info, _ = os.Stat(path)
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected existing mode kept, got %v", info.Mode().Perm())
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.String() != d.String() {
		t.Errorf("expected %q, got %q", d.String(), loaded.String())
	}
}
