package editor

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/richinsley/goshaderedit/shader"
)

// Editors often write a file in several steps; events closer together than
// this collapse into one reload.
const watchDebounce = 50 * time.Millisecond

// Watch reloads the files the stages were loaded from whenever they change on
// disk, until ctx is done. Reloads are queued for Drain.
func (e *Editor) Watch(ctx context.Context) error {
	watched := make(map[string]shader.Kind)
	for _, kind := range shader.Kinds {
		if e.paths[kind] == "" {
			continue
		}
		abs, err := filepath.Abs(e.paths[kind])
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", e.paths[kind], err)
		}
		watched[abs] = kind
	}
	if len(watched) == 0 {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch directories so editors that save by rename are still seen.
	dirs := make(map[string]bool)
	for path := range watched {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
		log.Printf("Watching %s for shader changes", dir)
	}

	go e.watch(ctx, w, watched)
	return nil
}

func (e *Editor) watch(ctx context.Context, w *fsnotify.Watcher, watched map[string]shader.Kind) {
	defer w.Close()
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			path, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			kind, ok := watched[path]
			if !ok {
				continue
			}
			if t, ok := timers[path]; ok {
				t.Stop()
			}
			timers[path] = time.AfterFunc(watchDebounce, func() {
				e.loadAndPost(kind, path)
			})
		}
	}
}
