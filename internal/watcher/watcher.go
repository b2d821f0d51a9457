// Package watcher reports changes to processor files.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for writes to settle
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls a function when files matching a pattern change
type Watcher struct {
	watcher  *fsnotify.Watcher
	pattern  string
	onChange func(path string)
	debounce time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	timer  *time.Timer
	events map[string]struct{}
}

// Options configures a Watcher
type Options struct {
	// Pattern is matched against the base name of changed files, "*.toml" when empty
	Pattern string
	// Debounce groups bursts of events, DefaultDebounce when zero
	Debounce time.Duration
	Logger   *zap.Logger
}

// New creates a watcher. onChange is called once per changed file after
// the debounce period.
func New(onChange func(path string), opts Options) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if opts.Pattern == "" {
		opts.Pattern = "*.toml"
	}
	if _, err := filepath.Match(opts.Pattern, ""); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("invalid pattern %q: %w", opts.Pattern, err)
	}
	if opts.Debounce == 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Watcher{
		watcher:  fsWatcher,
		pattern:  opts.Pattern,
		onChange: onChange,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		events:   make(map[string]struct{}),
	}, nil
}

// Add starts watching the given directories
func (w *Watcher) Add(dirs ...string) error {
	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.logger.Info("Watching for changes", zap.Strings("dirs", dirs), zap.String("pattern", w.pattern))
	return nil
}

// Run processes events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if ok, _ := filepath.Match(w.pattern, filepath.Base(event.Name)); !ok {
		return
	}
	w.logger.Debug("File changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))

	w.mu.Lock()
	defer w.mu.Unlock()
	w.events[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	changed := w.events
	w.events = make(map[string]struct{})
	w.mu.Unlock()

	paths := make([]string, 0, len(changed))
	for path := range changed {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		w.onChange(path)
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
