// Package batch runs one outline command over many files with bounded
// concurrency.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/orgtree/internal/buffer"
	"github.com/dgallion1/orgtree/internal/outline"
)

// Func is the work applied to each file's engine.
type Func func(ctx context.Context, e *outline.Engine) error

// Result reports what happened to one file.
type Result struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
	Saved   bool   `json:"saved"`
	Edits   int    `json:"edits"`
	Error   string `json:"error,omitempty"`
}

// Runner processes files in parallel, one document per worker.
type Runner struct {
	Workers int
	Marker  byte
	DryRun  bool
	Log     *slog.Logger
}

// Run applies fn to every path. Per-file failures are reported in the
// results; the returned error is only set when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, paths []string, fn Func) ([]Result, error) {
	log := r.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			start := time.Now()
			res := r.process(gctx, path, fn, log)
			results[i] = res
			if res.Error != "" {
				log.Warn("batch file failed", "path", path, "error", res.Error)
			} else {
				log.Debug("batch file done", "path", path, "changed", res.Changed,
					"edits", res.Edits, "duration_ms", time.Since(start).Milliseconds())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("batch cancelled: %w", err)
	}
	return results, nil
}

func (r *Runner) process(ctx context.Context, path string, fn Func, log *slog.Logger) Result {
	res := Result{Path: path}

	doc, err := buffer.LoadFile(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	before := doc.Version()

	opts := []outline.Option{outline.WithLogger(log.With("path", path))}
	if r.Marker != 0 {
		opts = append(opts, outline.WithHeadingMarker(r.Marker))
	}
	e := outline.New(doc, opts...)

	err = fn(ctx, e)
	res.Edits = e.Edits()
	res.Changed = doc.Version() != before
	if err != nil {
		// Partially edited documents are not written back.
		res.Error = err.Error()
		return res
	}
	if !res.Changed || r.DryRun {
		return res
	}
	if err := buffer.SaveFile(path, doc); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Saved = true
	return res
}

// RecalcAll is the Func most callers want: recalculate every summary.
func RecalcAll(ctx context.Context, e *outline.Engine) error {
	return e.RecalcAll(ctx)
}

// Summary counts results by outcome.
type Summary struct {
	Files   int `json:"files"`
	Changed int `json:"changed"`
	Failed  int `json:"failed"`
	Edits   int `json:"edits"`
}

func Summarize(results []Result) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		if r.Changed {
			s.Changed++
		}
		if r.Error != "" {
			s.Failed++
		}
		s.Edits += r.Edits
	}
	return s
}
