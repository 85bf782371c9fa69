package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"b.hcl",
		"a.hcl",
		"notes.txt",
		"pipelines/train.hcl",
		".git/config.hcl",
		"_scratch/old.hcl",
	} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "pipelines", "train.hcl"),
	}, files)
}

func TestFindFilesByExtension_HiddenRootIsWalked(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".project")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.hcl"), nil, 0o644))

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFindFilesByExtension_Errors(t *testing.T) {
	_, err := FindFilesByExtension(t.TempDir(), "")
	assert.ErrorContains(t, err, "extension must not be empty")

	_, err = FindFilesByExtension(filepath.Join(t.TempDir(), "missing"), ".hcl")
	assert.Error(t, err)
}
