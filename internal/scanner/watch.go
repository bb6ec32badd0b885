package scanner

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"sourcelens/internal/logging"
)

// WatchEvent is a debounced filesystem change notification. Removed
// reflects fsnotify's op, collapsed to the shapes the incremental rescan cares
// about: a file was created/modified (content may need reparsing) or
// removed.
type WatchEvent struct {
	Path    string
	Removed bool
}

// Watch recursively watches root for filesystem changes and emits debounced
// WatchEvents on the returned channel, coalescing rapid-fire events on the
// same path within the configured debounce window (§11, scan --watch). The
// returned channel is closed when ctx is cancelled or an unrecoverable
// watcher error occurs.
func Watch(ctx context.Context, root string, debounce time.Duration) (<-chan WatchEvent, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if defaultIgnoredDirs[info.Name()] {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		w.Close()
		return nil, err
	}

	out := make(chan WatchEvent, 64)

	go func() {
		defer close(out)
		defer w.Close()

		pending := make(map[string]bool)
		timer := time.NewTimer(debounce)
		if !timer.Stop() {
			<-timer.C
		}
		timerActive := false

		flush := func() {
			for path, removed := range pending {
				select {
				case out <- WatchEvent{Path: path, Removed: removed}:
				case <-ctx.Done():
					return
				}
			}
			pending = make(map[string]bool)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						w.Add(ev.Name)
					}
				}
				removed := ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0
				pending[ev.Name] = removed
				if !timerActive {
					timer.Reset(debounce)
					timerActive = true
				}
			case <-timer.C:
				timerActive = false
				flush()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logging.ScanWarn("watch error: %v", err)
			}
		}
	}()

	return out, nil
}
