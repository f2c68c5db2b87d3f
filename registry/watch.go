package registry

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/wkalt/msgdef/util/log"
)

// Watch keeps the registry in sync with the .msg files under root until ctx
// is canceled. Created and modified files are (re)loaded, and removed files
// are unregistered. Directories created after the watch starts are watched
// too. Watch returns once the watch is established; failures to load
// individual files are logged rather than returned.
func (r *Registry) Watch(ctx context.Context, root string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := addRecursive(watcher, root); err != nil {
		watcher.Close()
		return err
	}
	go r.watchLoop(ctx, watcher)
	log.Infow(ctx, "watching message directory", "root", root)
	return nil
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := watcher.Add(p); err != nil {
				return fmt.Errorf("failed to watch %s: %w", p, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	return nil
}

func (r *Registry) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			r.handleEvent(ctx, watcher, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Errorw(ctx, "file watcher error", "error", err)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Registry) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addRecursive(watcher, event.Name); err != nil {
				log.Errorw(ctx, "failed to watch new directory", "error", err)
				return
			}
			if _, err := r.LoadDirectory(ctx, event.Name); err != nil {
				log.Errorw(ctx, "failed to load new directory", "error", err)
			}
			return
		}
	}
	if filepath.Ext(event.Name) != msgExtension {
		return
	}
	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		if _, err := r.LoadFile(ctx, event.Name); err != nil {
			log.Warnw(ctx, "failed to reload message file", "file", event.Name, "error", err)
		}
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		name, err := TypeNameFromPath(filepath.ToSlash(event.Name))
		if err != nil {
			return
		}
		r.Unregister(name)
		log.Debugw(ctx, "unregistered message type", "type", name)
	}
}
