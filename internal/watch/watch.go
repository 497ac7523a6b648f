// Package watch re-runs a conversion when one of its input archives changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"mech3-scene/internal/logging"
)

// DefaultDebounce collapses the burst of events a single archive rewrite
// produces.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a fixed set of files. Their directories are watched
// instead of the files so that replaced files are still seen.
type Watcher struct {
	Logger   *log.Logger
	Debounce time.Duration

	fsnotify *fsnotify.Watcher
	files    map[string]bool
}

// New starts watching paths.
func New(paths []string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		Debounce: DefaultDebounce,
		fsnotify: fsWatch,
		files:    make(map[string]bool),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsWatch.Close()
			return nil, fmt.Errorf("watch: %s: %w", p, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsWatch.Add(dir); err != nil {
			fsWatch.Close()
			return nil, fmt.Errorf("watch: %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsnotify.Close()
}

// Run calls fn after each change to a watched file, once per burst of
// events, until ctx is done. Errors from fn are logged and do not stop the
// loop.
func (w *Watcher) Run(ctx context.Context, fn func() error) error {
	logger := logging.Or(w.Logger)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return nil
			}
			if !w.relevant(e) {
				continue
			}
			logger.Debug("input changed", "file", e.Name, "op", e.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			logger.Info("re-running conversion")
			if err := fn(); err != nil {
				logger.Error("conversion failed", "err", err)
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) relevant(e fsnotify.Event) bool {
	if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(e.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
