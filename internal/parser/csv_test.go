package parser

import (
	"strings"
	"testing"
)

func TestCSVParser_Checklist(t *testing.T) {
	input := "Section,Task,Status\nbackend,API,done\nbackend,DB,open\nfrontend,UI,x\nfrontend,,done\n"
	tree, err := (&CSVParser{}).Parse(strings.NewReader(input), "plan.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "plan" {
		t.Errorf("expected title %q, got %q", "plan", tree.Title)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(tree.Children))
	}
	backend := tree.Children[0]
	if backend.Title != "backend" || backend.Page != 2 {
		t.Errorf("unexpected section %q at %d", backend.Title, backend.Page)
	}
	if total, done := backend.Tasks(); total != 2 || done != 1 {
		t.Errorf("expected backend 1/2, got %d/%d", done, total)
	}
	frontend := tree.Children[1]
	if total, done := frontend.Tasks(); total != 1 || done != 1 {
		t.Errorf("expected frontend 1/1 (blank row skipped), got %d/%d", done, total)
	}
}

func TestCSVParser_NoKnownColumns(t *testing.T) {
	tree, err := (&CSVParser{}).Parse(strings.NewReader("a,b\n1,2\n3\n"), "raw.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := tree.Children[0].Body
	if len(body) != 2 || body[0].Text != "1" || body[1].Text != "3" || body[0].Checked {
		t.Errorf("expected first column as unchecked items, got %+v", body)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	tree, err := (&CSVParser{}).Parse(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 {
		t.Errorf("expected no sections, got %d", len(tree.Children))
	}
}
