package config

import (
	"context"
	"errors"
	"fmt"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"io/fs"
	"path/filepath"
)

// Watcher reloads the config file whenever it is written or replaced.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher

	log *zap.SugaredLogger
}

// NewWatcher watches the directory holding path, so editors that save by
// renaming a temporary file over it are noticed too.
func NewWatcher(path string, log *zap.SugaredLogger) (*Watcher, error) {
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}

	return &Watcher{path: path, watcher: w, log: log}, nil
}

// Run calls onChange with every valid new version of the file until ctx is
// done. Invalid versions are logged and skipped.
func (w *Watcher) Run(ctx context.Context, onChange func(*Config)) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("fsnotify events channel closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Read(w.path)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				continue
			case err != nil:
				w.log.Warnw("ignoring config change", "path", w.path, "error", err)
				continue
			}

			w.log.Infow("config changed", "path", w.path)
			onChange(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("fsnotify errors channel closed")
			}
			w.log.Warnw("config watcher error", "error", err)
		}
	}
}
