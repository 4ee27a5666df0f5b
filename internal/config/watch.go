package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"github.com/flowcentral/flowcentral/internal/catalog"
)

// WatchCatalog monitors the facility threshold catalog file for changes and
// calls onChange with the newly loaded catalog each time the file is written.
// It runs until ctx is cancelled.
//
// If a reload fails (e.g., invalid YAML or an inverted band), the error is
// logged, the previous catalog remains active and onChange is not called.
func WatchCatalog(ctx context.Context, path string, onChange func(*catalog.Catalog)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("config: watching catalog for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Only reload on write or create events. Editors often write via
			// rename (atomic save), so also catch fsnotify.Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cat, err := catalog.Load(path)
			if err != nil {
				slog.Error("config: catalog reload failed, keeping previous catalog",
					"path", path, "err", err)
				continue
			}

			slog.Info("config: catalog reloaded", "path", path, "facilities", len(cat.Facilities()))
			onChange(cat)

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
