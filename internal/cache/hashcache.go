package cache

import (
	"bytes"
	"errors"
	"maps"
	"os"
	"slices"
	"sync"

	"filemerge/internal/logger"

	"go.uber.org/zap"
)

// HashCache maps absolute file paths to content hashes. Safe for concurrent use.
type HashCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// hashEntry keeps the path as bytes so names that are not valid UTF-8 survive
// the JSON encoding.
type hashEntry struct {
	Path []byte `json:"path"`
	Hash string `json:"hash"`
}

func NewHashCache() *HashCache {
	return &HashCache{entries: make(map[string]string)}
}

// LoadHashCache never fails: a missing or corrupt file, or one written with
// another algorithm, gives an empty cache.
func LoadHashCache(path, algorithm string) *HashCache {
	stored, err := readSnapshot[[]hashEntry](path, kindHashes, algorithm)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Log.Warn("hash cache unusable, starting empty",
				zap.String("path", path),
				zap.Error(err))
		}
		return NewHashCache()
	}

	c := NewHashCache()
	for _, e := range stored {
		c.entries[string(e.Path)] = e.Hash
	}

	logger.Log.Debug("hash cache loaded",
		zap.String("path", path),
		zap.Int("entries", len(c.entries)))

	return c
}

// Save writes the cache tagged with the algorithm its hashes were made with.
func (c *HashCache) Save(path, algorithm string) error {
	c.mu.RLock()
	stored := make([]hashEntry, 0, len(c.entries))
	for p, h := range c.entries {
		stored = append(stored, hashEntry{Path: []byte(p), Hash: h})
	}
	c.mu.RUnlock()

	slices.SortFunc(stored, func(a, b hashEntry) int {
		return bytes.Compare(a.Path, b.Path)
	})

	return writeSnapshot(path, kindHashes, algorithm, stored)
}

func (c *HashCache) Get(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hash, ok := c.entries[path]
	return hash, ok
}

func (c *HashCache) Put(path, hash string) {
	c.mu.Lock()
	c.entries[path] = hash
	c.mu.Unlock()
}

func (c *HashCache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

func (c *HashCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a copy of the cache contents.
func (c *HashCache) Entries() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.entries)
}
