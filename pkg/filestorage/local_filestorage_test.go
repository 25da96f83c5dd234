package filestorage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewLocalFileStorage(dir)
	require.NoError(t, err)
	fs.now = func() time.Time { return time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) }

	path, err := fs.Save(strings.NewReader("jpeg"), "Photo.JPG", "orders")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "orders/2026/03/09/2026-03-09-"))
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	raw, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(raw))

	assert.Equal(t, "/uploads/"+path, fs.PublicPath(path))

	require.NoError(t, fs.Delete(fs.PublicPath(path)))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(path)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, fs.Delete("orders/missing.jpg"))
}

func TestLocalFileStorage_DeleteStaysInsideBase(t *testing.T) {
	parent := t.TempDir()
	outside := filepath.Join(parent, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	fs, err := NewLocalFileStorage(filepath.Join(parent, "uploads"))
	require.NoError(t, err)

	require.NoError(t, fs.Delete("../secret.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
