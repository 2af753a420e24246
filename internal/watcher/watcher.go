// Package watcher blocks on file-system changes scoped to an explicit set of
// files. Each wait is a fresh subscription: the watch set is recomputed by the
// caller every build cycle, so files that stop being referenced stop being
// watched automatically.
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/sitepress/internal/logging"
)

// DefaultDebounce coalesces rapid successive writes from editors and tools.
const DefaultDebounce = 100 * time.Millisecond

// PathWatcher waits for changes to explicit file sets.
type PathWatcher struct {
	debounce time.Duration
	logger   logging.Logger
}

// New creates a PathWatcher with the given debounce interval.
func New(debounce time.Duration, logger logging.Logger) *PathWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &PathWatcher{
		debounce: debounce,
		logger:   logger.WithComponent("watcher"),
	}
}

// WaitForChange subscribes to the given paths and blocks until one of them
// changes, then unsubscribes immediately: only the first event of a batch
// wakes the caller, the rest are dropped with the subscription. After the
// first event the debounce interval elapses before returning, so a burst of
// writes triggers a single rebuild. Returns the changed path.
func (pw *PathWatcher) WaitForChange(ctx context.Context, paths []string) (string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return "", err
	}
	defer func() { _ = w.Close() }()

	// Watch the parent directories and filter events down to the path
	// set. Editors replace files with rename-and-write sequences that a
	// direct file watch loses track of; a directory watch does not.
	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			pw.logger.Warn(ctx, err, "cannot watch directory", "dir", dir)
		}
	}

	changed := ""
	for changed == "" {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case event := <-w.Events:
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			pw.logger.Info(ctx, "file changed", "path", event.Name, "op", event.Op.String())
			changed = event.Name
		case err := <-w.Errors:
			pw.logger.Warn(ctx, err, "watch error")
		}
	}

	// Unsubscribe before debouncing: events arriving during the delay
	// belong to the same burst and are intentionally dropped.
	_ = w.Close()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(pw.debounce):
	}

	return changed, nil
}
