package emit

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig watches a YAML emission config and invokes onChange with the
// reloaded config (or the reload error) every time the file is rewritten.
// It blocks until ctx is canceled or the watcher fails. Intended for dev
// bootstrap loops that re-emit on config edits.
func WatchConfig(ctx context.Context, path string, onChange func(*Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Watch the directory rather than the file: editors replace files on
	// save, which drops a direct file watch.
	dir, file := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := w.Add(dir); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			onChange(LoadConfig(path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
