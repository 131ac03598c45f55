// Package watch re-runs a callback whenever a version file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/maloquacious/vista/internal/logger"
)

// DefaultDebounce coalesces the burst of events one save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher observes a single file through its parent directory, since the
// version file is replaced by rename on every save.
type Watcher struct {
	path     string
	debounce time.Duration
	log      logger.Logger
}

// New creates a Watcher for path.
func New(path string, log logger.Logger) *Watcher {
	if log == nil {
		log = logger.Default
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		log:      log,
	}
}

// Run calls onChange once at start and again after every change to the file,
// until ctx is done. An error from onChange stops the watch.
func (w *Watcher) Run(ctx context.Context, onChange func() error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.log.Debug("watching %s", w.path)

	if err := onChange(); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("%s: %s", event.Op, event.Name)
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error: %v", err)

		case <-timer.C:
			if err := onChange(); err != nil {
				return err
			}
		}
	}
}
