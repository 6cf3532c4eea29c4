package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/orgtree/internal/batch"
)

func TestWatcher_Scan(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	org := filepath.Join(sub, "todo.org")
	txt := filepath.Join(dir, "notes.txt")
	swp := filepath.Join(dir, "todo.org.swp")
	for _, p := range []string{org, txt, swp} {
		if err := os.WriteFile(p, []byte("* A [/]\n- [x] a\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	w, err := New(dir, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	results, err := w.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(results) != 1 || results[0].Path != org || !results[0].Saved {
		t.Fatalf("expected only todo.org rewritten, got %+v", results)
	}
	data, _ := os.ReadFile(org)
	if string(data) != "* A [1/1]\n- [x] a\n" {
		t.Errorf("unexpected content %q", data)
	}
	if data, _ := os.ReadFile(txt); string(data) != "* A [/]\n- [x] a\n" {
		t.Errorf("non-outline file touched: %q", data)
	}
}

func TestWatcher_ShouldIgnore(t *testing.T) {
	w := &Watcher{opts: Options{Ignore: DefaultIgnore}}
	for path, want := range map[string]bool{
		"/x/.git":         true,
		"/x/a.org.swp":    true,
		"/x/.#a.org":      true,
		"/x/a.org~":       true,
		"/x/a.org":        false,
		"/x/node_modules": true,
	} {
		if got := w.shouldIgnore(path); got != want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatcher_RecalculatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "todo.org")
	if err := os.WriteFile(p, []byte("- [ ] a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	saved := make(chan batch.Result, 8)
	w, err := New(dir, Options{
		Debounce: 20 * time.Millisecond,
		OnBatch: func(results []batch.Result) {
			for _, r := range results {
				if r.Saved {
					saved <- r
				}
			}
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(p, []byte("- [ ] parent [/]\n  - [x] a\n  - [x] b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-saved:
		if r.Path != p {
			t.Errorf("unexpected path %q", r.Path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for recalculation")
	}
	data, _ := os.ReadFile(p)
	if string(data) != "- [x] parent [2/2]\n  - [x] a\n  - [x] b\n" {
		t.Errorf("unexpected content %q", data)
	}
}
