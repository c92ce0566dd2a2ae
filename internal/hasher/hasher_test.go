package hasher

import (
	"os"
	"path/filepath"
	"testing"

	"filemerge/internal/cache"
	"filemerge/internal/config"
	"filemerge/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestHash_Algorithms(t *testing.T) {
	p := writeFile(t, t.TempDir(), "hi.txt", "hi")

	tests := []struct {
		algorithm string
		want      string
	}{
		{AlgorithmMD5, "49f68a5c8493ec2c0bf489821c21fc3b"},
		{AlgorithmSHA256, "8f434346648f6b96df89dda901c5176b10a6d83961dd3c1ac88b59b2dc327aa4"},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			h, err := New(tt.algorithm, nil)
			require.NoError(t, err)

			sum, err := h.Compute(p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sum)
		})
	}
}

func TestHash_XXH3IsLowerHex128(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", "same")
	b := writeFile(t, dir, "b", "same")
	c := writeFile(t, dir, "c", "different")

	h, err := New("", nil)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmXXH3, h.Algorithm())

	sa, err := h.Compute(a)
	require.NoError(t, err)
	sb, err := h.Compute(b)
	require.NoError(t, err)
	sc, err := h.Compute(c)
	require.NoError(t, err)

	assert.Len(t, sa, 32)
	assert.Regexp(t, "^[0-9a-f]+$", sa)
	assert.Equal(t, sa, sb)
	assert.NotEqual(t, sa, sc)
}

func TestHash_UsesCacheAndSkipsRehash(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "x.txt", "hi")
	c := cache.NewHashCache()

	h, err := New(AlgorithmXXH3, c)
	require.NoError(t, err)

	first, err := h.Hash(p)
	require.NoError(t, err)
	second, err := h.Hash(p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, h.Computed())

	cached, ok := c.Get(p)
	assert.True(t, ok)
	assert.Equal(t, first, cached)

	// A second run over a persisted cache performs no rehash.
	cachePath := filepath.Join(dir, "hashes.json")
	require.NoError(t, h.SaveCache(cachePath))

	h2, err := Open(AlgorithmXXH3, cachePath)
	require.NoError(t, err)
	again, err := h2.Hash(p)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.EqualValues(t, 0, h2.Computed())
}

func TestHash_UnreadableFileIsFileError(t *testing.T) {
	h, err := New(AlgorithmXXH3, nil)
	require.NoError(t, err)

	_, err = h.Hash(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	var fe *model.FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "hash", fe.Op)
	assert.Equal(t, 0, h.Cache().Len())
}

func TestNew_UnknownAlgorithm(t *testing.T) {
	_, err := New("crc32", nil)
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestOpen_DropsHashesOfAnotherAlgorithm(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "x.txt", "hi")
	cachePath := filepath.Join(dir, "hashes.json")

	h, err := Open(AlgorithmXXH3, cachePath)
	require.NoError(t, err)
	_, err = h.Hash(p)
	require.NoError(t, err)
	require.NoError(t, h.SaveCache(cachePath))

	md5h, err := Open(AlgorithmMD5, cachePath)
	require.NoError(t, err)
	assert.Equal(t, 0, md5h.Cache().Len())

	sum, err := md5h.Hash(p)
	require.NoError(t, err)
	assert.Equal(t, "49f68a5c8493ec2c0bf489821c21fc3b", sum)
	assert.EqualValues(t, 1, md5h.Computed())

	// an empty name means the default algorithm
	again, err := Open("", cachePath)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmXXH3, again.Algorithm())
	assert.Equal(t, 1, again.Cache().Len())
}
