package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
)

// WatchTuning reloads the tuning file whenever it changes and hands every
// valid result to apply. Invalid edits are logged and ignored. It blocks
// until ctx is cancelled.
func WatchTuning(ctx context.Context, path string, apply func(Tuning)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace the file, so watch its directory
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch tuning file: %w", err)
	}
	logger.Info("Watching tuning file", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			t, err := LoadTuning(target)
			if err != nil {
				logger.Warn("Ignoring tuning change", "path", target, "error", err)
				continue
			}
			logger.Info("Tuning reloaded", "path", target)
			apply(t)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Tuning watcher error", "error", err)
		}
	}
}
