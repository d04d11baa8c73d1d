package engine

// watch.go - fsnotify-driven re-runs for watch mode

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces bursts of file events into one re-run.
const debounceDelay = 100 * time.Millisecond

// Watch runs an initial check and then re-runs on every change to a
// Solidity file under the watched roots. Each report is passed to
// onReport together with any run error. Watch blocks until the context
// is cancelled.
func (e *Engine) Watch(ctx context.Context, onReport func(*Report, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	for _, root := range e.discoveryRoots() {
		dir := filepath.Join(e.root, filepath.FromSlash(root))
		if err := watchDirRecursive(watcher, dir); err != nil {
			e.logger.Warn("failed to watch source root", "dir", root, "error", err)
		}
	}

	onReport(e.Run(ctx))

	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// Directories created under a watched root join the watch set.
			isDir := false
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					isDir = true
					_ = watchDirRecursive(watcher, event.Name)
				}
			}
			if !isDir && !strings.HasSuffix(event.Name, ".sol") {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				e.logger.Debug("source changed, re-checking", "file", event.Name)
				onReport(e.Run(ctx))
			})

		case err := <-watcher.Errors:
			e.logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
