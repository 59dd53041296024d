package fileutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverFixtures(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "loop.lox", "closure/counter.lox", "closure/deep/loop.lox", "README")

	files, warnings, err := DiscoverFixtures(root, ScanOptions{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, files, 4)

	rels := make([]string, 0, len(files))
	for _, f := range files {
		rels = append(rels, f.RelPath)
		assert.True(t, filepath.IsAbs(f.Path), "path should be absolute: %s", f.Path)
		assert.Equal(t, filepath.Base(f.Path), f.Name)
	}
	assert.Equal(t, []string{"README", "closure/counter.lox", "closure/deep/loop.lox", "loop.lox"}, rels)

	assert.Equal(t, "", files[0].Ext)
	assert.Equal(t, ".lox", files[3].Ext)
}

func TestDiscoverFixtures_EmptyTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a/b/.keep")

	files, _, err := DiscoverFixtures(filepath.Join(root, "a", "b"), ScanOptions{Extensions: []string{".lox"}})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverFixtures_MissingRoot(t *testing.T) {
	_, _, err := DiscoverFixtures(filepath.Join(t.TempDir(), "closure"), ScanOptions{})
	assert.Error(t, err)
}
