package hasher

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"sync/atomic"

	"filemerge/internal/cache"
	"filemerge/internal/config"
	"filemerge/internal/model"

	"github.com/zeebo/xxh3"
)

const (
	AlgorithmXXH3   = "xxh3"
	AlgorithmMD5    = "md5"
	AlgorithmSHA256 = "sha256"
)

type digestFunc func(r io.Reader) (string, error)

// Hasher computes content hashes, consulting the cache before reading a file.
type Hasher struct {
	algorithm string
	digest    digestFunc
	cache     *cache.HashCache
	computed  atomic.Int64
}

func New(algorithm string, c *cache.HashCache) (*Hasher, error) {
	if algorithm == "" {
		algorithm = AlgorithmXXH3
	}

	var digest digestFunc
	switch algorithm {
	case AlgorithmXXH3:
		digest = digestXXH3
	case AlgorithmMD5:
		digest = digestWith(md5.New)
	case AlgorithmSHA256:
		digest = digestWith(sha256.New)
	default:
		return nil, fmt.Errorf("%w: unknown hash algorithm %q", config.ErrConfiguration, algorithm)
	}

	if c == nil {
		c = cache.NewHashCache()
	}

	return &Hasher{algorithm: algorithm, digest: digest, cache: c}, nil
}

// Open returns a Hasher backed by the cache persisted at cachePath. Entries
// written with another algorithm are dropped.
func Open(algorithm, cachePath string) (*Hasher, error) {
	h, err := New(algorithm, nil)
	if err != nil {
		return nil, err
	}

	h.cache = cache.LoadHashCache(cachePath, h.algorithm)
	return h, nil
}

// SaveCache persists the cache tagged with this Hasher's algorithm.
func (h *Hasher) SaveCache(path string) error {
	return h.cache.Save(path, h.algorithm)
}

// Hash returns the cached hash for path, computing and caching it when absent.
func (h *Hasher) Hash(path string) (string, error) {
	if sum, ok := h.cache.Get(path); ok {
		return sum, nil
	}

	sum, err := h.Compute(path)
	if err != nil {
		return "", err
	}

	h.cache.Put(path, sum)
	return sum, nil
}

// Compute always reads the file and never touches the cache.
func (h *Hasher) Compute(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &model.FileError{Path: path, Op: "hash", Err: err}
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	sum, err := h.digest(f)
	if err != nil {
		return "", &model.FileError{Path: path, Op: "hash", Err: err}
	}

	h.computed.Add(1)
	return sum, nil
}

// Computed counts the files actually read since the Hasher was created.
func (h *Hasher) Computed() int64 {
	return h.computed.Load()
}

func (h *Hasher) Algorithm() string {
	return h.algorithm
}

func (h *Hasher) Cache() *cache.HashCache {
	return h.cache
}

func digestXXH3(r io.Reader) (string, error) {
	h := xxh3.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}

	sum := h.Sum128().Bytes()
	return hex.EncodeToString(sum[:]), nil
}

func digestWith(newHash func() hash.Hash) digestFunc {
	return func(r io.Reader) (string, error) {
		h := newHash()
		if _, err := io.Copy(h, r); err != nil {
			return "", err
		}
		return hex.EncodeToString(h.Sum(nil)), nil
	}
}
