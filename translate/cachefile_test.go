package translate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "translations_cache.dat")
}

func TestCacheSaveLoadRoundTrip(t *testing.T) {
	path := cachePath(t)

	c := NewCache(100)
	c.Put("Start Game", "Inizia")
	c.Put("Player", "Giocatore")
	c.Put("Città", "City") // non-ASCII survives the UTF-16 encoding
	require.NoError(t, c.Save(path))

	loaded := NewCache(100)
	ok, err := loaded.Load(path)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 3, loaded.Size())
	for _, pair := range [][2]string{
		{"Start Game", "Inizia"},
		{"Player", "Giocatore"},
		{"Città", "City"},
	} {
		got, ok := loaded.Get(pair[0])
		require.True(t, ok, pair[0])
		assert.Equal(t, pair[1], got)
	}
}

func TestCacheLoadMissingFile(t *testing.T) {
	c := NewCache(10)
	ok, err := c.Load(filepath.Join(t.TempDir(), "nope.dat"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheLoadCorruptedMagic(t *testing.T) {
	path := cachePath(t)

	c := NewCache(10)
	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("c", "3")
	require.NoError(t, c.Save(path))

	// Corrupt the first magic byte
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[0] = 0x00
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded := NewCache(10)
	loaded.Put("keep", "me")

	ok, err := loaded.Load(path)
	assert.ErrorIs(t, err, ErrCacheFileInvalid)
	assert.False(t, ok)

	// In-memory contents untouched
	assert.Equal(t, 1, loaded.Size())
	assert.True(t, loaded.Contains("keep"))
}

func TestCacheLoadWrongVersion(t *testing.T) {
	path := cachePath(t)

	c := NewCache(10)
	c.Put("a", "1")
	require.NoError(t, c.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[4] = 0xFF // version field
	require.NoError(t, os.WriteFile(path, data, 0o644))

	ok, err := NewCache(10).Load(path)
	assert.ErrorIs(t, err, ErrCacheFileInvalid)
	assert.False(t, ok)
}

func TestCacheLoadTruncatedEntryKeepsPrefix(t *testing.T) {
	path := cachePath(t)

	c := NewCache(10)
	c.Put("alpha", "beta")
	c.Put("gamma", "delta")
	require.NoError(t, c.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-3], 0o644))

	loaded := NewCache(10)
	ok, err := loaded.Load(path)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, loaded.Size())
}

func TestCacheSaveIsAtomicOnDisk(t *testing.T) {
	path := cachePath(t)

	c := NewCache(10)
	c.Put("a", "1")
	require.NoError(t, c.Save(path))

	// No temp file left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(path), entries[0].Name())
}
