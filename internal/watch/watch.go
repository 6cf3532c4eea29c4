// Package watch recalculates summaries in outline files as they change on
// disk.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dgallion1/orgtree/internal/batch"
)

// DefaultExtensions are the file types the watcher rewrites.
var DefaultExtensions = []string{".org", ".outline"}

// DefaultIgnore holds base-name patterns skipped while walking and on events.
var DefaultIgnore = []string{".git", "node_modules", ".#*", "*.swp", "*.tmp", "*~"}

// Options configures a Watcher.
type Options struct {
	// Debounce is how long the watcher waits for more events before acting.
	Debounce   time.Duration
	Extensions []string
	Ignore     []string
	Runner     *batch.Runner
	Log        *slog.Logger
	// OnBatch, when set, receives the results of each recalculation pass.
	OnBatch func([]batch.Result)
}

// Watcher watches a file or directory tree and runs "recalculate all
// summaries" on outline files after they settle. Writing a file back
// triggers one more pass which finds nothing to change.
type Watcher struct {
	root   string
	opts   Options
	log    *slog.Logger
	fsw    *fsnotify.Watcher
	events chan string

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher for root, which may be a single file.
func New(root string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.Ignore == nil {
		opts.Ignore = DefaultIgnore
	}
	if opts.Runner == nil {
		opts.Runner = &batch.Runner{Workers: 1}
	}
	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		root:   abs,
		opts:   opts,
		log:    log.With("component", "watch"),
		fsw:    fsw,
		events: make(chan string, 1024),
		done:   make(chan struct{}),
	}, nil
}

// Start registers the watches and launches the event and debounce loops.
func (w *Watcher) Start(ctx context.Context) error {
	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", w.root, err)
	}
	if info.IsDir() {
		err = w.addRecursive(w.root)
	} else {
		// Editors replace files on save, so watch the parent and filter.
		err = w.fsw.Add(filepath.Dir(w.root))
	}
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	w.log.Info("watching", "root", w.root, "debounce", w.opts.Debounce)

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop shuts the watcher down and waits for pending work.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()
	})
	w.wg.Wait()
}

// Scan recalculates every matching file under root once.
func (w *Watcher) Scan(ctx context.Context) ([]batch.Result, error) {
	var paths []string
	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", w.root, err)
	}
	if !info.IsDir() {
		paths = []string{w.root}
	} else {
		err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if w.shouldIgnore(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && w.matches(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return w.run(ctx, paths)
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.opts.Ignore {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// matches reports whether path is an outline file this watcher owns.
func (w *Watcher) matches(path string) bool {
	if w.shouldIgnore(path) {
		return false
	}
	info, err := os.Stat(w.root)
	if err == nil && !info.IsDir() {
		return path == w.root
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.opts.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !w.shouldIgnore(ev.Name) {
					if err := w.addRecursive(ev.Name); err != nil {
						w.log.Warn("watch new directory", "path", ev.Name, "error", err)
					}
					continue
				}
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !w.matches(ev.Name) {
				continue
			}
			select {
			case w.events <- ev.Name:
			default:
				w.log.Warn("event buffer full, dropping", "path", ev.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()
	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			// Renamed-away and deleted files have nothing to recalculate.
			if _, err := os.Stat(p); err == nil {
				paths = append(paths, p)
			}
		}
		clear(pending)
		if len(paths) == 0 {
			return
		}
		if _, err := w.run(context.WithoutCancel(ctx), paths); err != nil {
			w.log.Error("recalculate", "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case p := <-w.events:
			pending[p] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.opts.Debounce)
			}
		case <-timerC:
			timer, timerC = nil, nil
			flush()
		}
	}
}

func (w *Watcher) run(ctx context.Context, paths []string) ([]batch.Result, error) {
	results, err := w.opts.Runner.Run(ctx, paths, batch.RecalcAll)
	for _, r := range results {
		if r.Saved {
			w.log.Info("recalculated", "path", r.Path, "edits", r.Edits)
		}
	}
	if w.opts.OnBatch != nil {
		w.opts.OnBatch(results)
	}
	return results, err
}
