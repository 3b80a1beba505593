package outdir_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-harvest/internal/outdir"
)

func Test_Ensure_CreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "downloads")

	path, err := outdir.Ensure(dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Second call is a no-op
	_, err = outdir.Ensure(dir)
	assert.NoError(t, err)
}

func Test_Ensure_RejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloads")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := outdir.Ensure(path)
	assert.Error(t, err)
}

func Test_FileExists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(outdir.FilePath(dir, "cat.jpg"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(outdir.FilePath(dir, "folder.jpg"), 0755))

	assert.True(t, outdir.FileExists(dir, "cat.jpg"))
	assert.False(t, outdir.FileExists(dir, "dog.jpg"))
	assert.False(t, outdir.FileExists(dir, "folder.jpg"), "directories are not files")
}
