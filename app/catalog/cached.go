package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	cache "github.com/go-pkgz/expirable-cache/v3"
)

const (
	cacheKey        = "snapshot"
	defaultCacheTTL = 1 * time.Hour
	defaultDebounce = 500 * time.Millisecond
)

// CachedLoader wraps Loader with snapshot caching and file watching
type CachedLoader struct {
	loader        *Loader
	cache         cache.Cache[string, *Snapshot]
	watcher       *fsnotify.Watcher
	stopCh        chan struct{}
	watched       map[string]bool // absolute catalog file paths
	mu            sync.RWMutex
	ttl           time.Duration
	debounce      time.Duration
	watcherActive bool
}

// NewCachedLoader creates a new cached loader watching the catalog files
func NewCachedLoader(loader *Loader, ttl time.Duration) (*CachedLoader, error) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	cl := &CachedLoader{
		loader:   loader,
		cache:    cache.NewCache[string, *Snapshot]().WithTTL(ttl),
		stopCh:   make(chan struct{}),
		watched:  make(map[string]bool, 2),
		ttl:      ttl,
		debounce: defaultDebounce,
	}

	// attempt to start watcher, but don't fail if it doesn't work;
	// the cache then relies on ttl expiration only
	if err := cl.startWatcher(context.Background()); err != nil {
		slog.Warn("catalog watcher disabled", "error", err)
	}

	return cl, nil
}

// Load returns the cached snapshot or loads it from disk on cache miss
func (cl *CachedLoader) Load(ctx context.Context) (*Snapshot, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err() // nolint:wrapcheck // context errors should be returned as-is
	default:
	}

	if snap, ok := cl.cache.Get(cacheKey); ok {
		return snap, nil
	}

	// cache miss, invalid catalogs are never cached
	snap, err := cl.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	cl.cache.Set(cacheKey, snap, cl.ttl)
	return snap, nil
}

// ItemsFile returns the items file path
func (cl *CachedLoader) ItemsFile() string {
	return cl.loader.ItemsFile()
}

// CategoriesFile returns the categories file path
func (cl *CachedLoader) CategoriesFile() string {
	return cl.loader.CategoriesFile()
}

// Close stops the file watcher and cleans up resources
func (cl *CachedLoader) Close() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if !cl.watcherActive {
		return nil
	}

	close(cl.stopCh)
	cl.watcherActive = false

	if cl.watcher != nil {
		return cl.watcher.Close() // nolint:wrapcheck // watcher error is descriptive
	}

	return nil
}

// startWatcher watches the directories holding the catalog files.
// Directories are watched rather than files so atomic replace-by-rename is seen.
func (cl *CachedLoader) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	dirs := make(map[string]bool, 2)
	for _, f := range []string{cl.loader.ItemsFile(), cl.loader.CategoriesFile()} {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		cl.watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	added := 0
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			slog.Debug("can't watch catalog directory", "dir", dir, "error", err)
			continue
		}
		added++
	}
	if added == 0 {
		_ = watcher.Close()
		return fmt.Errorf("no catalog directory could be watched")
	}

	cl.watcher = watcher
	cl.mu.Lock()
	cl.watcherActive = true
	cl.mu.Unlock()

	go cl.watchLoop(ctx)

	return nil
}

// watchLoop processes file system events with debouncing
func (cl *CachedLoader) watchLoop(ctx context.Context) {
	debounceTimer := time.NewTimer(cl.debounce)
	debounceTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-cl.stopCh:
			return

		case event, ok := <-cl.watcher.Events:
			if !ok {
				return
			}

			if cl.isRelevantEvent(event) {
				debounceTimer.Reset(cl.debounce)
			}

		case <-debounceTimer.C:
			slog.Debug("catalog changed, invalidating cache")
			cl.invalidate()

		case err, ok := <-cl.watcher.Errors:
			if !ok {
				return
			}
			slog.Debug("catalog watcher error", "error", err)
		}
	}
}

// isRelevantEvent checks if event touches one of the catalog files
func (cl *CachedLoader) isRelevantEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return cl.watched[abs]
}

// invalidate clears the cache
func (cl *CachedLoader) invalidate() {
	cl.cache.Invalidate(cacheKey)
}
