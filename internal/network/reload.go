package network

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last change before reloading.
const DefaultDebounce = 500 * time.Millisecond

// Reload loads a new snapshot from src and installs it in store. On failure the
// served snapshot is left untouched.
func Reload(ctx context.Context, store *Store, src Source) (*Network, error) {
	n, err := Load(ctx, src)
	if err != nil {
		return nil, err
	}
	store.Swap(n)

	stats := n.Stats()
	log.Printf("Network %s loaded from %s: %d stations, %d edges, %d lines",
		n.ID, n.Source, stats.Stations, stats.Edges, stats.Lines)
	return n, nil
}

// Watch reloads store from src whenever a .json file in dir changes. Bursts of
// events are coalesced by debounce. It returns when ctx is done.
func Watch(ctx context.Context, store *Store, src Source, dir string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	log.Printf("Watching %s for line changes", dir)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Warning: line watcher error: %v", err)

		case <-timer.C:
			if _, err := Reload(ctx, store, src); err != nil {
				log.Printf("Warning: network reload failed, keeping current snapshot: %v", err)
			}
		}
	}
}

// Poll reloads store from src every interval until ctx is done. It serves
// sources that cannot be watched on disk, such as the database repositories.
func Poll(ctx context.Context, store *Store, src Source, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Reloading network from %s every %v", src.Name(), interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Network reload loop stopped")
			return
		case <-ticker.C:
			if _, err := Reload(ctx, store, src); err != nil {
				log.Printf("Warning: network reload failed, keeping current snapshot: %v", err)
			}
		}
	}
}
