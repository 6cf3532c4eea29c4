package outline

import "testing"

func TestIndent(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"", 0},
		{"text", 0},
		{"  - item", 2},
		{"\t\t1. item", 2},
		{" \t mixed", 3},
		{"    ", 4},
	}
	for _, tt := range tests {
		if got := Indent(tt.line); got != tt.want {
			t.Errorf("Indent(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
	if got := IndentString("\t  - x"); got != "\t  " {
		t.Errorf("IndentString = %q", got)
	}
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		line   string
		marker byte
		want   int
	}{
		{"* Heading", '*', 1},
		{"*** Deep", '*', 3},
		{"*bold*", '*', 0},
		{"**", '*', 0},
		{" * indented bullet", '*', 0},
		{"- item", '*', 0},
		{"## Section", '#', 2},
		{"* not a hash heading", '#', 0},
	}
	for _, tt := range tests {
		if got := HeadingLevel(tt.line, tt.marker); got != tt.want {
			t.Errorf("HeadingLevel(%q, %q) = %d, want %d", tt.line, tt.marker, got, tt.want)
		}
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank("  \t ") || !IsBlank("") {
		t.Error("expected whitespace-only lines to be blank")
	}
	if IsBlank("  x") {
		t.Error("expected content line not to be blank")
	}
}
