// Package watch re-runs a callback whenever a RenewDSL document changes.
package watch

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Options selects what to watch.
type Options struct {
	Dirs      []string // directories to watch; missing ones are skipped
	Extension string   // only files with this suffix trigger the callback
	Logger    *slog.Logger
}

// Watch blocks until ctx is cancelled, calling onChange with the path of each
// document that is written or created. A failing onChange is logged and
// watching continues.
func Watch(ctx context.Context, opts Options, onChange func(path string) error) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range opts.Dirs {
		if _, err := os.Stat(dir); err != nil {
			logger.Warn("skipping watch directory", "dir", dir, "error", err)
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return err
		}
		logger.Debug("watching", "dir", dir)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, opts.Extension) || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Info("file changed", "file", event.Name, "op", event.Op.String())
			if err := onChange(event.Name); err != nil {
				logger.Error("check failed", "file", event.Name, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
