package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "c"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "c", "f.txt"), []byte("x"), 0o644))

	n, err := CountDirs(context.Background(), root, NewToken())
	require.NoError(t, err)
	// a, a/b and c, plus the root when the walker reports it.
	assert.GreaterOrEqual(t, n, int64(3))
	assert.LessOrEqual(t, n, int64(4))
}

func TestCountDirs_StopsOnCancel(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b", "c"), 0o755))

	tok := NewToken()
	tok.RequestCancel()
	n, _ := CountDirs(context.Background(), root, tok)
	assert.Zero(t, n)
}
