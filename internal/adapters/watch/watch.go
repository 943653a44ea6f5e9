// Package watch reports files in a directory once they stop changing.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/okian/benchscore/pkg/logger"
)

// DefaultSettle is how long a file must be quiet before it is reported.
const DefaultSettle = 2 * time.Second

// Handler receives a settled file. info is the file state at report time.
type Handler func(ctx context.Context, path string, info os.FileInfo)

// Option applies a configuration option to the Watcher.
type Option func(*Watcher)

// WithSettle sets the quiet period. Zero reports on the first event.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.settle = d
		}
	}
}

// WithPattern limits reported files to base names matching a
// filepath.Match pattern.
func WithPattern(pattern string) Option {
	return func(w *Watcher) {
		if pattern != "" {
			w.pattern = pattern
		}
	}
}

// WithInitialScan reports files already present when Run starts.
func WithInitialScan(enabled bool) Option {
	return func(w *Watcher) {
		w.initialScan = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher follows one directory. Hidden files are never reported.
type Watcher struct {
	dir         string
	settle      time.Duration
	pattern     string
	initialScan bool
	logger      logger.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a Watcher for dir.
func New(dir string, opts ...Option) *Watcher {
	w := &Watcher{
		dir:     dir,
		settle:  DefaultSettle,
		pattern: "*",
		timers:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get()
	}
	w.logger = w.logger.Named("watch")
	return w
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Run calls fn for every settled file until ctx is cancelled. fn runs on
// the watcher goroutine and should not block for long.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	defer w.stopTimers()

	w.logger.Info(ctx, "watching for event logs",
		logger.String("dir", w.dir),
		logger.String("settle", w.settle.String()),
	)

	ready := make(chan string)
	if w.initialScan {
		if err := w.scan(ctx, ready); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev, ready)

		case path := <-ready:
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			fn(ctx, path, info)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(ctx, "watcher error", logger.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event, ready chan<- string) {
	if !w.accepts(ev.Name) {
		return
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.cancel(ev.Name)
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
		w.schedule(ctx, ev.Name, ready)
	}
}

func (w *Watcher) scan(ctx context.Context, ready chan<- string) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(w.dir, name)
		if w.accepts(path) {
			w.schedule(ctx, path, ready)
		}
	}
	return nil
}

func (w *Watcher) accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ok, err := filepath.Match(w.pattern, base)
	return err == nil && ok
}

// schedule (re)starts the quiet period of path.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		if w.timers[path] != t {
			w.mu.Unlock()
			return
		}
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
	w.timers[path] = t
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// Pending returns the number of files waiting out their quiet period.
func (w *Watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}
