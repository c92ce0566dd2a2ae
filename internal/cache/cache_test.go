package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"filemerge/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAlgorithm = "xxh3"

func TestHashCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.json")

	c := NewHashCache()
	c.Put("/a/x.txt", "0123abcd")
	c.Put("/b/y.txt", "ffee0011")
	require.NoError(t, c.Save(path, testAlgorithm))

	loaded := LoadHashCache(path, testAlgorithm)
	assert.Equal(t, c.Entries(), loaded.Entries())

	hash, ok := loaded.Get("/a/x.txt")
	assert.True(t, ok)
	assert.Equal(t, "0123abcd", hash)
}

func TestHashCache_MissingOrCorruptStartsEmpty(t *testing.T) {
	dir := t.TempDir()

	missing := LoadHashCache(filepath.Join(dir, "nope.json"), testAlgorithm)
	assert.Equal(t, 0, missing.Len())

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte(`{"kind":"hashes","data":{"/a`), 0644))
	assert.Equal(t, 0, LoadHashCache(corrupt, testAlgorithm).Len())
}

func TestHashCache_EvictAndConcurrentPut(t *testing.T) {
	c := NewHashCache()

	var wg sync.WaitGroup
	for i := range 64 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Put(filepath.Join("/src", string(rune('a'+i%26)), "f"), "h")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 26, c.Len())

	c.Evict("/src/a/f")
	_, ok := c.Get("/src/a/f")
	assert.False(t, ok)
}

func TestPlan_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")

	plan := model.MovePlan{
		{SourcePriority: 0, ContentHash: "aa", SourceDir: "/a", RelativePath: "x.txt", SizeBytes: 2},
		{SourcePriority: 1, ContentHash: "bb", SourceDir: "/b", RelativePath: "dir/y.txt", SizeBytes: 3},
	}
	require.NoError(t, SavePlan(path, testAlgorithm, plan))

	loaded, ok := LoadPlan(path, testAlgorithm)
	require.True(t, ok)
	assert.Equal(t, plan, loaded)
}

func TestPlan_EmptyPlanIsStillCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, SavePlan(path, testAlgorithm, model.MovePlan{}))

	loaded, ok := LoadPlan(path, testAlgorithm)
	require.True(t, ok)
	assert.Empty(t, loaded)
}

// Both artifacts are written from their own bytes and cannot be confused.
func TestArtifactsAreIndependent(t *testing.T) {
	dir := t.TempDir()
	hashPath := filepath.Join(dir, "hashes.json")
	planPath := filepath.Join(dir, "plan.json")

	c := NewHashCache()
	c.Put("/a/x.txt", "aa")
	plan := model.MovePlan{{ContentHash: "aa", SourceDir: "/a", RelativePath: "x.txt", SizeBytes: 2}}

	require.NoError(t, c.Save(hashPath, testAlgorithm))
	require.NoError(t, SavePlan(planPath, testAlgorithm, plan))

	loadedPlan, ok := LoadPlan(planPath, testAlgorithm)
	require.True(t, ok)
	assert.Equal(t, plan, loadedPlan)
	assert.Equal(t, c.Entries(), LoadHashCache(hashPath, testAlgorithm).Entries())

	_, ok = LoadPlan(hashPath, testAlgorithm)
	assert.False(t, ok, "a hash cache must not load as a plan")
	assert.Equal(t, 0, LoadHashCache(planPath, testAlgorithm).Len(), "a plan must not load as a hash cache")
}

func TestReadSnapshot_KindMismatchIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, SavePlan(path, testAlgorithm, model.MovePlan{}))

	_, err := readSnapshot[[]hashEntry](path, kindHashes, testAlgorithm)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(a, []byte("{}"), 0644))

	require.NoError(t, Clear(a, filepath.Join(dir, "missing.json")))
	assert.NoFileExists(t, a)
}

func TestNonUTF8NamesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	name := "caf\xe9.jpg"

	plan := model.MovePlan{{ContentHash: "aa", SourceDir: "/src/\xff", RelativePath: "photos/" + name, SizeBytes: 4}}
	require.NoError(t, SavePlan(filepath.Join(dir, "plan.json"), testAlgorithm, plan))

	loaded, ok := LoadPlan(filepath.Join(dir, "plan.json"), testAlgorithm)
	require.True(t, ok)
	assert.Equal(t, plan, loaded)

	c := NewHashCache()
	c.Put("/src/"+name, "bb")
	require.NoError(t, c.Save(filepath.Join(dir, "hashes.json"), testAlgorithm))

	hash, ok := LoadHashCache(filepath.Join(dir, "hashes.json"), testAlgorithm).Get("/src/" + name)
	assert.True(t, ok)
	assert.Equal(t, "bb", hash)
}

func TestAlgorithmMismatchIsIgnored(t *testing.T) {
	dir := t.TempDir()
	hashPath := filepath.Join(dir, "hashes.json")
	planPath := filepath.Join(dir, "plan.json")

	c := NewHashCache()
	c.Put("/a/x.txt", "aa")
	require.NoError(t, c.Save(hashPath, "xxh3"))
	require.NoError(t, SavePlan(planPath, "xxh3", model.MovePlan{{ContentHash: "aa", SourceDir: "/a", RelativePath: "x.txt"}}))

	assert.Equal(t, 0, LoadHashCache(hashPath, "md5").Len())
	_, ok := LoadPlan(planPath, "md5")
	assert.False(t, ok)

	_, err := readSnapshot[[]planEntry](planPath, kindPlan, "md5")
	assert.ErrorIs(t, err, ErrCorrupt)
}
