package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCache_RoundTrip(t *testing.T) {
	fc := NewFileCache[*raster.Raster](t.TempDir(), "layers")
	g := raster.Grid{OriginX: 0, OriginY: 60, CellSize: 30, Cols: 2, Rows: 2, EPSG: 32616}
	r, err := raster.FromValues(g, "nri", []float64{0.1, -1, 0.5, 1})
	require.NoError(t, err)
	r.Unset(1, 0)

	key := fc.GenerateKey("nri", 2023, 240.0)
	require.NoError(t, fc.Set(key, r))

	got, ok := fc.Get(key)
	require.True(t, ok)
	assert.Equal(t, r.Grid, got.Grid)
	assert.Equal(t, r.Valid, got.Valid)
	assert.Equal(t, r.Data, got.Data)
}

func TestFileCache_Miss(t *testing.T) {
	fc := NewFileCache[string](t.TempDir(), "x")
	_, ok := fc.Get(fc.GenerateKey("absent"))
	assert.False(t, ok)
}

func TestFileCache_ChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	fc := NewFileCache[string](dir, "x")
	key := fc.GenerateKey("k")
	require.NoError(t, fc.Set(key, "original"))

	path := filepath.Join(dir, "x", key+".json")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(string(raw), "original", "tampered", 1)), 0644))

	_, ok := fc.Get(key)
	assert.False(t, ok)
}

func TestGenerateKey(t *testing.T) {
	fc := NewFileCache[int](t.TempDir(), "x")
	assert.Equal(t, fc.GenerateKey("a", 1), fc.GenerateKey("a", 1))
	assert.NotEqual(t, fc.GenerateKey("a", 1), fc.GenerateKey("a", 2))
	assert.Len(t, fc.GenerateKey("a"), 40)
}
