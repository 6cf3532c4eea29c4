// Package importer turns uploaded documents into outline text with every
// summary token filled in.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/orgtree/internal/buffer"
	"github.com/dgallion1/orgtree/internal/doctree"
	"github.com/dgallion1/orgtree/internal/outline"
	"github.com/dgallion1/orgtree/internal/parser"
)

// Options configures an import.
type Options struct {
	Marker            byte
	FallbackPdftotext bool
	// Summaries adds "[/]" to headings and parent items that own tasks.
	Summaries bool
	Log       *slog.Logger
}

// Result is an imported document.
type Result struct {
	Title string
	Text  string
	Tree  *doctree.DocTree
}

// Import parses data according to filename's extension and renders it as
// an outline. Outline files pass through unchanged apart from summary
// recalculation.
func Import(ctx context.Context, data []byte, filename string, opts Options) (Result, error) {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Marker == 0 {
		opts.Marker = outline.DefaultHeadingMarker
	}

	p, err := parser.ForFile(filename, parser.Options{
		HeadingMarker:     opts.Marker,
		FallbackPdftotext: opts.FallbackPdftotext,
	})
	if err != nil {
		return Result{}, err
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", filename, err)
	}

	var text string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".org", ".outline":
		text = string(data)
	default:
		text = doctree.Render(tree, doctree.RenderOptions{Marker: opts.Marker, Summaries: opts.Summaries})
	}

	doc := buffer.Parse(text)
	e := outline.New(doc, outline.WithHeadingMarker(opts.Marker), outline.WithLogger(log))
	if err := e.RecalcAll(ctx); err != nil {
		return Result{}, fmt.Errorf("recalculate %s: %w", filename, err)
	}
	log.Debug("imported", "filename", filename, "sections", len(tree.Children), "edits", e.Edits())
	return Result{Title: tree.Title, Text: doc.String(), Tree: tree}, nil
}

// ImportReader reads r fully, up to limit bytes when limit is positive, and
// imports it.
func ImportReader(ctx context.Context, r io.Reader, limit int64, filename string, opts Options) (Result, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", filename, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return Result{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, filename, limit)
	}
	return Import(ctx, data, filename, opts)
}
