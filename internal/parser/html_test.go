package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/orgtree/internal/doctree"
)

func TestHTMLParser_ListsAndCheckboxes(t *testing.T) {
	input := `<html><head><title>Sprint</title></head><body>
<nav>skip me</nav>
<h1>Backlog</h1>
<p>Open work.</p>
<ul>
  <li><input type="checkbox" checked> ship parser
    <ul><li><label><input type="checkbox"> tests</label></li></ul>
  </li>
  <li>plain</li>
</ul>
<h2>Steps</h2>
<ol><li>one</li><li>two</li></ol>
</body></html>`

	tree, err := (&HTMLParser{}).Parse(strings.NewReader(input), "sprint.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Sprint" {
		t.Errorf("expected title from <title>, got %q", tree.Title)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 top-level section, got %d", len(tree.Children))
	}
	backlog := tree.Children[0]
	if backlog.Text() != "Open work." {
		t.Errorf("unexpected section text %q", backlog.Text())
	}
	items := backlog.Body[1:]
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(items), items)
	}
	if ship := items[0]; !ship.Task || !ship.Checked || ship.Text != "ship parser" {
		t.Errorf("unexpected first item: %+v", ship)
	}
	if tests := items[1]; !tests.Task || tests.Checked || tests.Depth != 1 || tests.Text != "tests" {
		t.Errorf("unexpected nested item: %+v", tests)
	}
	if plain := items[2]; plain.Task || plain.Text != "plain" {
		t.Errorf("unexpected plain item: %+v", plain)
	}

	steps := backlog.Children[0]
	if len(steps.Body) != 2 || steps.Body[0].Kind != doctree.Ordered {
		t.Errorf("expected ordered steps, got %+v", steps.Body)
	}
}

func TestHTMLParser_TitleFallsBackToFilename(t *testing.T) {
	tree, err := (&HTMLParser{}).Parse(strings.NewReader("<p>hi</p>"), "page.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "page" {
		t.Errorf("expected %q, got %q", "page", tree.Title)
	}
}
