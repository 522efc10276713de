package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"pkt.systems/pslog"
)

// Watch signals on the returned channel whenever the file at path is
// written or replaced. The parent directory is watched so editors that
// save by rename are noticed too. Signals coalesce; the channel closes
// when ctx is done.
func Watch(ctx context.Context, path string) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	log := pslog.Ctx(ctx).With("path", path)
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				log.Debug("config changed", "op", event.Op.String())
				select {
				case out <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", "err", err)
			}
		}
	}()
	return out, nil
}
