package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// ErrWatchUnsupported is returned by Watch when the store is not backed by
// the OS filesystem.
var ErrWatchUnsupported = errors.New("catalog watching requires the OS filesystem")

// Watch reloads the catalog whenever its file changes. The containing
// directory is watched so editors that replace the file are handled.
// The watcher stops when ctx is cancelled.
func (s *Store) Watch(ctx context.Context) error {
	if _, ok := s.fs.(*afero.OsFs); !ok {
		return ErrWatchUnsupported
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch catalog directory %s: %w", dir, err)
	}

	go s.watchFiles(ctx, watcher)

	slog.Debug("Started catalog watcher", "path", s.path)
	return nil
}

// watchFiles handles file system events until ctx is done.
func (s *Store) watchFiles(ctx context.Context, watcher *fsnotify.Watcher) {
	defer func() {
		watcher.Close()
		slog.Info("Catalog watcher stopped", "path", s.path)
	}()

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.Reload(); err != nil {
				slog.Error("Catalog reload failed, keeping previous snapshot", "path", s.path, "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Catalog watcher error", "error", err)
		}
	}
}
