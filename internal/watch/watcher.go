// Package watch reports changes to catalog files so composed prompts can be
// rebuilt while the files are edited.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Config configures a Watcher
type Config struct {
	// Patterns are catalog files or doublestar globs
	Patterns []string
	// DebounceDelay groups bursts of writes into one Event (default 100ms)
	DebounceDelay time.Duration
	Logger        *zap.Logger
}

// Event lists the files that changed during one debounce window.
type Event struct {
	Paths []string
}

// Watcher watches the directories holding catalog files and emits an Event
// when a file matching one of the patterns is written, created, removed or
// renamed.
type Watcher struct {
	patterns []string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	events   chan Event
}

// New creates a watcher and registers the base directory of every pattern.
func New(config Config) (*Watcher, error) {
	if len(config.Patterns) == 0 {
		return nil, fmt.Errorf("watch: no patterns")
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := config.DebounceDelay
	if debounce == 0 {
		debounce = 100 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		events:   make(chan Event, 1),
	}
	for _, p := range config.Patterns {
		p = filepath.Clean(p)
		w.patterns = append(w.patterns, p)
		if err := w.addBase(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Events returns the channel of change events. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run processes file system events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.watcher.Close()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				pending[filepath.Clean(event.Name)] = true
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))

		case <-ticker.C:
			if len(pending) == 0 {
				continue
			}
			ev := Event{Paths: make([]string, 0, len(pending))}
			for p := range pending {
				ev.Paths = append(ev.Paths, p)
			}
			slices.Sort(ev.Paths)
			clear(pending)

			w.logger.Debug("Catalog files changed", zap.Strings("paths", ev.Paths))
			select {
			case w.events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	for _, p := range w.patterns {
		if ok, _ := doublestar.PathMatch(p, name); ok {
			return true
		}
	}
	return false
}

// addBase watches the static prefix of pattern, recursively for "**".
func (w *Watcher) addBase(pattern string) error {
	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
	base = filepath.FromSlash(base)
	if !strings.Contains(pattern, "**") {
		if err := w.watcher.Add(base); err != nil {
			return fmt.Errorf("watch %s: %w", base, err)
		}
		w.logger.Debug("Watching directory", zap.String("path", base))
		return nil
	}
	return filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != base && strings.HasPrefix(filepath.Base(path), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", zap.String("path", path), zap.Error(err))
		} else {
			w.logger.Debug("Watching directory", zap.String("path", path))
		}
		return nil
	})
}
