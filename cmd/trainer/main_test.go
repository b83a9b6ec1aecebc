package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicefailure/internal/data"
)

func smallGen() data.GenerateConfig {
	gen := data.DefaultGenerateConfig()
	gen.Rows = 50
	return gen
}

func TestWriteSynthetic_LeavesCacheAlone(t *testing.T) {
	dir := t.TempDir()
	cache := filepath.Join(dir, "device_failure.csv")
	require.NoError(t, os.WriteFile(cache, []byte("real"), 0o644))

	path, err := writeSynthetic(smallGen(), "", cache)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })
	assert.NotEqual(t, cache, path)

	b, err := os.ReadFile(cache)
	require.NoError(t, err)
	assert.Equal(t, "real", string(b))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	ds, err := data.ReadCSV(f)
	require.NoError(t, err)
	assert.Equal(t, 50, ds.Len())
}

func TestWriteSynthetic_RefusesCachePath(t *testing.T) {
	dir := t.TempDir()
	cache := filepath.Join(dir, "device_failure.csv")
	require.NoError(t, os.WriteFile(cache, []byte("real"), 0o644))

	_, err := writeSynthetic(smallGen(), filepath.Join(dir, ".", "device_failure.csv"), cache)
	assert.Error(t, err)
	b, err := os.ReadFile(cache)
	require.NoError(t, err)
	assert.Equal(t, "real", string(b))

	out := filepath.Join(dir, "synthetic", "rows.csv")
	path, err := writeSynthetic(smallGen(), out, cache)
	require.NoError(t, err)
	assert.Equal(t, out, path)
}
