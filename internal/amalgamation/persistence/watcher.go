package persistence

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	"github.com/mantonx/amalgam/internal/amalgamation"
	"github.com/mantonx/amalgam/internal/logger"
)

// ChangeFunc receives the result of reloading the settings file
type ChangeFunc func(prefs *amalgamation.Preferences, err error)

// Watcher reloads a settings file whenever it is written
type Watcher struct {
	store *FileStore
	log   hclog.Logger
}

func NewWatcher(store *FileStore) *Watcher {
	return &Watcher{
		store: store,
		log:   logger.Named("settings-watcher"),
	}
}

// Start begins watching and returns once the watch is registered. The
// directory is watched rather than the file so that editors that replace
// the file are followed. Watching stops when ctx is done.
func (w *Watcher) Start(ctx context.Context, onChange ChangeFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(w.store.Path())
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go w.loop(ctx, fw, onChange)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, onChange ChangeFunc) {
	defer fw.Close()

	target := filepath.Clean(w.store.Path())
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			w.log.Debug("settings file changed", "op", event.Op.String())
			prefs, err := w.store.Load()
			onChange(prefs, err)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", "error", err)
		}
	}
}
