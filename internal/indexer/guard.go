package indexer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"filemerge/internal/cache"
	"filemerge/internal/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// sourceGuard watches the source trees while they are indexed and evicts the
// cached hash of any file that changes, so no entry outlives its content.
type sourceGuard struct {
	fw     *fsnotify.Watcher
	cache  *cache.HashCache
	doneCh chan struct{}
	wg     sync.WaitGroup

	mu    sync.Mutex
	dirty map[string]struct{}
}

func startGuard(roots []string, c *cache.HashCache) (*sourceGuard, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	g := &sourceGuard{
		fw:     fw,
		cache:  c,
		doneCh: make(chan struct{}),
		dirty:  make(map[string]struct{}),
	}

	for _, root := range roots {
		if err := g.addRecursive(root); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	g.wg.Add(1)
	go g.run()

	logger.Log.Debug("source guard started", zap.Strings("roots", roots))
	return g, nil
}

func (g *sourceGuard) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if err := g.fw.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}

		return nil
	})
}

func (g *sourceGuard) run() {
	defer g.wg.Done()

	for {
		select {
		case <-g.doneCh:
			return

		case event, ok := <-g.fw.Events:
			if !ok {
				return
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Create) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := g.addRecursive(event.Name); err != nil {
						logger.Log.Warn("failed to watch new directory",
							zap.String("path", event.Name),
							zap.Error(err))
					}
				}
			}

			g.markDirty(event.Name)

		case err, ok := <-g.fw.Errors:
			if !ok {
				return
			}

			logger.Log.Warn("source guard error", zap.Error(err))
		}
	}
}

func (g *sourceGuard) markDirty(path string) {
	g.mu.Lock()
	g.dirty[path] = struct{}{}
	g.mu.Unlock()

	g.cache.Evict(path)

	logger.Log.Debug("source changed during indexing, cache entry evicted",
		zap.String("path", path))
}

// Stop ends the watch and evicts every path seen changing once more, which
// covers hashes that were written back after their eviction.
func (g *sourceGuard) Stop() int {
	close(g.doneCh)
	_ = g.fw.Close()
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()

	for path := range g.dirty {
		g.cache.Evict(path)
	}

	return len(g.dirty)
}
