package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"filemerge/internal/util"
)

// Version 2 stores paths as raw bytes and records the hash algorithm.
const snapshotVersion = 2

const (
	kindHashes = "hashes"
	kindPlan   = "move_plan"
)

// ErrCorrupt is returned for a cache file that exists but cannot be used.
var ErrCorrupt = errors.New("cache file is corrupt")

type snapshot[T any] struct {
	Kind      string `json:"kind"`
	Version   int    `json:"version"`
	Algorithm string `json:"algorithm"`
	Data      T      `json:"data"`
}

func writeSnapshot[T any](path, kind, algorithm string, data T) error {
	b, err := json.Marshal(snapshot[T]{Kind: kind, Version: snapshotVersion, Algorithm: algorithm, Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode %s cache: %w", kind, err)
	}

	if err := util.AtomicWrite(path, bytes.NewReader(b), 0644); err != nil {
		return fmt.Errorf("failed to write %s cache: %w", kind, err)
	}

	return nil
}

// readSnapshot returns os.ErrNotExist for a missing file and ErrCorrupt for
// anything unparsable, written for another kind of cache or hashed with
// another algorithm.
func readSnapshot[T any](path, kind, algorithm string) (T, error) {
	var zero T

	b, err := os.ReadFile(path)
	if err != nil {
		return zero, err
	}

	var s snapshot[T]
	if err := json.Unmarshal(b, &s); err != nil {
		return zero, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	if s.Kind != kind {
		return zero, fmt.Errorf("%w: %s holds %q, want %q", ErrCorrupt, path, s.Kind, kind)
	}

	if s.Version != snapshotVersion {
		return zero, fmt.Errorf("%w: %s has version %d", ErrCorrupt, path, s.Version)
	}

	if s.Algorithm != algorithm {
		return zero, fmt.Errorf("%w: %s holds %q hashes, want %q", ErrCorrupt, path, s.Algorithm, algorithm)
	}

	return s.Data, nil
}
