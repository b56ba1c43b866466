package gamefile

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/verte-zerg/tenpin/internal/model"
)

// Watch monitors path and calls onChange with the decoded games each time the file is written or
// replaced. The parent directory is watched so saves that rename a temp file over path are seen.
// A file that fails to decode is logged and skipped. Watch runs until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func([]model.Game)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := watcher.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}
	slog.Info("gamefile: watching for changes", "path", path)

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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			games, err := Load(path)
			if err != nil {
				slog.Error("gamefile: reload failed", "path", path, "err", err)
				continue
			}
			slog.Info("gamefile: reloaded", "path", path, "games", len(games))
			onChange(games)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("gamefile: watcher error", "err", err)
		}
	}
}
