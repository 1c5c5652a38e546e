package gorgzorg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir replicates testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func makeTree(t *testing.T) {
	t.Helper()
	chdir(t, t.TempDir())
	writeFile(t, "A/b.txt", []byte("xyz"))
	writeFile(t, "A/sub/c.bin", make([]byte, 1024))
	require.NoError(t, os.MkdirAll("A/empty", 0o755))
}

func TestEnumerate(t *testing.T) {
	makeTree(t)

	items, err := Enumerate("A", "")
	require.NoError(t, err)

	want := []Item{
		{Path: "A/b.txt", Size: 3},
		{Path: "A/empty", Dir: true},
		{Path: "A/sub", Dir: true},
		{Path: "A/sub/c.bin", Size: 1024},
	}
	assert.Equal(t, want, items)

	// Directories always precede their contents.
	seen := map[string]bool{"A": true}
	for _, item := range items {
		parent := filepath.ToSlash(filepath.Dir(item.Path))
		assert.True(t, seen[parent], "parent of %s not yet emitted", item.Path)
		if item.Dir {
			seen[item.Path] = true
		}
	}
}

func TestEnumerateGlob(t *testing.T) {
	t.Run("txt", func(t *testing.T) {
		makeTree(t)

		// Directories without a match below them are pruned entirely.
		items, err := Enumerate("A", "*.txt")
		require.NoError(t, err)
		assert.Equal(t, []Item{{Path: "A/b.txt", Size: 3}}, items)
	})

	t.Run("bin", func(t *testing.T) {
		makeTree(t)

		// A directory holding a nested match survives.
		items, err := Enumerate("A", "*.bin")
		require.NoError(t, err)
		want := []Item{
			{Path: "A/sub", Dir: true},
			{Path: "A/sub/c.bin", Size: 1024},
		}
		assert.Equal(t, want, items)
	})

	t.Run("no matches", func(t *testing.T) {
		makeTree(t)

		items, err := Enumerate("A", "*.pdf")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestEnumerateBadPattern(t *testing.T) {
	makeTree(t)

	_, err := Enumerate("A", "[")
	require.Error(t, err)
}

func TestEnumerateMissingRoot(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Enumerate("nope", "")
	require.Error(t, err)
}
