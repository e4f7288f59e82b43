package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\r\n\nb\nc\n"), 0o644))

	lines, err := LoadLines(path)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "", "b", "c"}, lines)
}

func TestLoadLines_Missing(t *testing.T) {
	_, err := LoadLines(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	require.True(t, PathExists(dir))
	require.False(t, PathExists(filepath.Join(dir, "missing")))
	require.False(t, PathExists(""))
}
