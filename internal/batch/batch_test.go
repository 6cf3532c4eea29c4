package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/orgtree/internal/outline"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	return string(data)
}

func TestRunner_RecalcAll(t *testing.T) {
	dir := t.TempDir()
	stale := writeFile(t, dir, "stale.org", "* Tasks [/]\n- [x] a\n- [ ] b\n")
	fresh := writeFile(t, dir, "fresh.org", "* Tasks [1/1]\n- [x] a\n")
	missing := filepath.Join(dir, "missing.org")

	r := &Runner{Workers: 2}
	results, err := r.Run(context.Background(), []string{stale, fresh, missing}, RecalcAll)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if res := results[0]; !res.Changed || !res.Saved || res.Edits != 1 || res.Error != "" {
		t.Errorf("stale: unexpected result %+v", res)
	}
	if got := readFile(t, stale); got != "* Tasks [1/2]\n- [x] a\n- [ ] b\n" {
		t.Errorf("stale not rewritten: %q", got)
	}

	if res := results[1]; res.Changed || res.Saved || res.Edits != 0 {
		t.Errorf("fresh: unexpected result %+v", res)
	}
	if res := results[2]; res.Error == "" || res.Path != missing {
		t.Errorf("missing: expected an error, got %+v", res)
	}

	sum := Summarize(results)
	if sum.Files != 3 || sum.Changed != 1 || sum.Failed != 1 || sum.Edits != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestRunner_KeepsFileMode(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.org", "- [ ] x [/]\n  - [x] y\n")

	if _, err := (&Runner{}).Run(context.Background(), []string{p}, RecalcAll); err != nil {
		t.Fatalf("Run: %v", err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600 preserved, got %v", info.Mode().Perm())
	}
	if got := readFile(t, p); got != "- [x] x [1/1]\n  - [x] y\n" {
		t.Errorf("unexpected content %q", got)
	}
}

func TestRunner_DryRunDoesNotSave(t *testing.T) {
	dir := t.TempDir()
	content := "* A [/]\n- [x] a\n"
	p := writeFile(t, dir, "a.org", content)

	results, err := (&Runner{DryRun: true}).Run(context.Background(), []string{p}, RecalcAll)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !results[0].Changed || results[0].Saved {
		t.Errorf("unexpected result %+v", results[0])
	}
	if got := readFile(t, p); got != content {
		t.Errorf("dry run modified file: %q", got)
	}
}

func TestRunner_FailedFuncNotSaved(t *testing.T) {
	dir := t.TempDir()
	content := "- [ ] a\n"
	p := writeFile(t, dir, "a.org", content)

	boom := errors.New("boom")
	fn := func(ctx context.Context, e *outline.Engine) error {
		if err := e.Toggle(ctx, 0, outline.Checked, true, true); err != nil {
			return err
		}
		return boom
	}
	results, err := (&Runner{}).Run(context.Background(), []string{p}, fn)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res := results[0]; res.Error != "boom" || !res.Changed || res.Saved {
		t.Errorf("unexpected result %+v", res)
	}
	if got := readFile(t, p); got != content {
		t.Errorf("failed file was written: %q", got)
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.org", "- [ ] a\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (&Runner{}).Run(ctx, []string{p}, RecalcAll); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
