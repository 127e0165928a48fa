package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedTrash(dir string) *LocalTrash {
	return &LocalTrash{Dir: dir, now: func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local) }}
}

func TestLocalTrash_MovesFolderAndWritesInfo(t *testing.T) {
	root := t.TempDir()
	trashDir := t.TempDir()
	src := filepath.Join(root, "Old Photos")
	mkTree(t, root, "Old Photos/.DS_Store")

	require.NoError(t, fixedTrash(trashDir).Trash(src))

	_, err := os.Lstat(src)
	assert.True(t, os.IsNotExist(err), "source should be gone")
	assert.FileExists(t, filepath.Join(trashDir, "files", "Old Photos", ".DS_Store"))

	info, err := os.ReadFile(filepath.Join(trashDir, "info", "Old Photos.trashinfo"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "[Trash Info]\n")
	assert.Contains(t, string(info), "Path="+filepath.ToSlash(root)+"/Old%20Photos\n")
	assert.Contains(t, string(info), "DeletionDate=2024-05-06T07:08:09\n")
}

func TestLocalTrash_NameCollisionsGetSuffix(t *testing.T) {
	root := t.TempDir()
	trashDir := t.TempDir()
	mkTree(t, root, "a/dup/", "b/dup/", "c/dup/")

	tr := fixedTrash(trashDir)
	for _, parent := range []string{"a", "b", "c"} {
		require.NoError(t, tr.Trash(filepath.Join(root, parent, "dup")))
	}

	for _, name := range []string{"dup", "dup.2", "dup.3"} {
		assert.DirExists(t, filepath.Join(trashDir, "files", name))
		assert.FileExists(t, filepath.Join(trashDir, "info", name+".trashinfo"))
	}
}

func TestLocalTrash_MissingSource(t *testing.T) {
	trashDir := t.TempDir()
	err := fixedTrash(trashDir).Trash(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ReasonNotFound, CategorizeError("missing", err).Reason)

	infos, _ := os.ReadDir(filepath.Join(trashDir, "info"))
	assert.Empty(t, infos, "no metadata for a failed move")
}

func TestLocalTrash_UnusableTrashDir(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "empty/", "blocker")

	// A regular file where the trash directory should be.
	err := fixedTrash(filepath.Join(root, "blocker")).Trash(filepath.Join(root, "empty"))
	require.Error(t, err)
	assert.Equal(t, ReasonTrashUnavailable, CategorizeError("empty", err).Reason)
	assert.DirExists(t, filepath.Join(root, "empty"))
}

func TestCopyTree(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	mkTree(t, src, "sub/inner/", "sub/Thumbs.db", "desktop.ini")
	if err := os.Symlink("sub", filepath.Join(src, "link")); err != nil {
		t.Logf("symlinks unavailable: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "dst")
	require.NoError(t, copyTree(src, dst))

	assert.DirExists(t, filepath.Join(dst, "sub", "inner"))
	assert.FileExists(t, filepath.Join(dst, "sub", "Thumbs.db"))
	assert.FileExists(t, filepath.Join(dst, "desktop.ini"))
	if _, err := os.Lstat(filepath.Join(src, "link")); err == nil {
		target, err := os.Readlink(filepath.Join(dst, "link"))
		require.NoError(t, err)
		assert.Equal(t, "sub", target)
	}
}

func TestTrashInfoEscapesPath(t *testing.T) {
	got := TrashInfo("/home/u/a b/ü", time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Equal(t, "[Trash Info]\nPath=/home/u/a%20b/%C3%BC\nDeletionDate=2020-01-02T03:04:05\n", got)
}
