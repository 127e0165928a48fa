package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sadopc/voidfinder/internal/model"
	"github.com/sadopc/voidfinder/internal/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkPaths(t *testing.T, m *memFS, root string) (WalkResult, []string) {
	t.Helper()
	res := NewWalker(m, noise.Default(), 0, nil).Walk(context.Background(), root, NewToken(), nil)
	paths := model.Paths(res.Entries)
	sort.Strings(paths)
	return res, paths
}

func TestWalk_NoiseOnlyDirectoryIsEmpty(t *testing.T) {
	m := newMemFS("/r", "keep.txt", "a/.DS_Store")
	_, paths := walkPaths(t, m, "/r")
	assert.Equal(t, []string{"/r/a"}, paths)
}

func TestWalk_NoiseWithNonEmptySubdirIsNotEmpty(t *testing.T) {
	m := newMemFS("/r", "keep.txt", "a/Thumbs.db", "a/sub/data.bin")
	_, paths := walkPaths(t, m, "/r")
	assert.Empty(t, paths)
}

func TestWalk_OnlyEmptySubdirsReportsTopmost(t *testing.T) {
	m := newMemFS("/r", "keep.txt", "a/b/", "a/c/d/", "a/c/desktop.ini")
	res, paths := walkPaths(t, m, "/r")
	assert.Equal(t, []string{"/r/a"}, paths)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, 1, res.Entries[0].NoiseCount)
	assert.Equal(t, 1, res.Entries[0].Depth)
	assert.True(t, res.Entries[0].IsEmpty)
	assert.Zero(t, res.Entries[0].EntryCount)
}

func TestWalk_EmptyRootIsReported(t *testing.T) {
	m := newMemFS("/r", "a/", "b/.DS_Store")
	res, paths := walkPaths(t, m, "/r")
	assert.True(t, res.RootEmpty)
	assert.Equal(t, []string{"/r"}, paths)
}

func TestWalk_NonEmptyChildFlushesHeldSiblings(t *testing.T) {
	// a settles empty before b is known to contain a file.
	m := newMemFS("/r", "a/", "b/file", "c/")
	res, paths := walkPaths(t, m, "/r")
	assert.False(t, res.RootEmpty)
	assert.Equal(t, []string{"/r/a", "/r/c"}, paths)
}

func TestWalk_ListingErrorIsNonEmptyAndRecorded(t *testing.T) {
	m := newMemFS("/r", "keep.txt", "locked/", "open/")
	m.errs["/r/locked"] = fs.ErrPermission

	res, paths := walkPaths(t, m, "/r")
	assert.Equal(t, []string{"/r/open"}, paths)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "/r/locked", res.Errors[0].Path)
	assert.ErrorIs(t, res.Errors[0], fs.ErrPermission)
	assert.False(t, res.Cancelled)
}

func TestWalk_ListingErrorMakesAncestorsNonEmpty(t *testing.T) {
	m := newMemFS("/r", "a/locked/", "a/fine/")
	m.errs["/r/a/locked"] = errors.New("i/o error")

	res, paths := walkPaths(t, m, "/r")
	assert.False(t, res.RootEmpty)
	assert.Equal(t, []string{"/r/a/fine"}, paths)
}

func TestWalk_NoNoiseRulesMeansMarkerFilesCount(t *testing.T) {
	m := newMemFS("/r", "keep.txt", "a/.DS_Store")
	res := NewWalker(m, noise.New(), 0, nil).Walk(context.Background(), "/r", NewToken(), nil)
	assert.Empty(t, res.Entries)
}

func TestWalk_ProgressThrottledByCount(t *testing.T) {
	m := newMemFS("/r", "d1/d2/d3/d4/d5/d6/d7/keep.txt")

	var got []Progress
	w := NewWalker(m, noise.Default(), 3, nil)
	res := w.Walk(context.Background(), "/r", NewToken(), func(p Progress) {
		got = append(got, p)
	})

	assert.Equal(t, int64(8), res.Scanned)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].Scanned)
	assert.Equal(t, int64(6), got[1].Scanned)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].Scanned, got[i-1].Scanned)
	}
	assert.NotEmpty(t, got[0].CurrentPath)
}

func TestWalk_CancelBeforeStart(t *testing.T) {
	m := newMemFS("/r", "a/")
	tok := NewToken()
	tok.RequestCancel()

	res := NewWalker(m, noise.Default(), 1, nil).Walk(context.Background(), "/r", tok, func(Progress) {
		t.Fatal("no progress expected after cancellation")
	})
	assert.True(t, res.Cancelled)
	assert.Empty(t, res.Entries)
	assert.Zero(t, res.Scanned)
	assert.Equal(t, Cancelled, tok.State())
	assert.Zero(t, m.readCount())
}

func TestWalk_DoneContextCancels(t *testing.T) {
	m := newMemFS("/r", "a/")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tok := NewToken()
	res := NewWalker(m, noise.Default(), 0, nil).Walk(ctx, "/r", tok, nil)
	assert.True(t, res.Cancelled)
	assert.Equal(t, Cancelled, tok.State())
}

func TestWalk_CancelledRunIsPrefixOfFullRun(t *testing.T) {
	m := newMemFS("/r",
		"a/", "b/x/", "b/file", "c/y/.DS_Store", "c/z/keep",
		"d/e/f/", "d/g/", "h/i/", "h/j/data", "k/",
	)
	full := NewWalker(m, noise.Default(), 0, nil).Walk(context.Background(), "/r", NewToken(), nil)
	require.False(t, full.Cancelled)
	require.NotEmpty(t, full.Entries)

	totalReads := int(full.Scanned)
	for stopAfter := 1; stopAfter < totalReads; stopAfter++ {
		t.Run(fmt.Sprintf("after_%d", stopAfter), func(t *testing.T) {
			tok := NewToken()
			reads := 0
			m.onRead = func(string) {
				reads++
				if reads == stopAfter {
					tok.RequestCancel()
				}
			}
			defer func() { m.onRead = nil }()

			part := NewWalker(m, noise.Default(), 0, nil).Walk(context.Background(), "/r", tok, nil)
			assert.True(t, part.Cancelled)
			assert.Equal(t, int64(stopAfter), part.Scanned)
			require.LessOrEqual(t, len(part.Entries), len(full.Entries))
			if len(part.Entries) > 0 {
				assert.Equal(t, full.Entries[:len(part.Entries)], part.Entries)
			}

			seen := map[string]bool{}
			for _, e := range part.Entries {
				assert.False(t, seen[e.Path], "duplicate entry %s", e.Path)
				seen[e.Path] = true
			}
		})
	}
}

func TestWalk_MatchesRecursiveDefinition(t *testing.T) {
	names := []string{".DS_Store", "Thumbs.db", "desktop.ini", "notes.txt", "img.png"}

	for seed := uint64(1); seed <= 60; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*7919))
		var paths []string
		var gen func(prefix string, depth int)
		gen = func(prefix string, depth int) {
			n := rng.IntN(4)
			for i := 0; i < n; i++ {
				switch k := rng.IntN(10); {
				case k < 4 && depth < 5:
					dir := fmt.Sprintf("%sd%d/", prefix, i)
					paths = append(paths, dir)
					gen(dir, depth+1)
				case k < 8:
					// Mostly noise so that empty directories are common.
					paths = append(paths, prefix+names[rng.IntN(3)])
				default:
					paths = append(paths, prefix+names[3+rng.IntN(2)])
				}
			}
		}
		gen("", 0)

		m := newMemFS("/r", paths...)
		for dir := range m.dirs {
			if dir != "/r" && rng.IntN(12) == 0 {
				m.errs[dir] = fs.ErrPermission
			}
		}

		res, got := walkPaths(t, m, "/r")
		want := expectedTopmost(m, noise.Default(), "/r")
		if len(want) == 0 {
			want = nil
		}
		if len(got) == 0 {
			got = nil
		}
		assert.Equal(t, want, got, "seed %d, tree %v", seed, paths)
		for _, e := range res.Errors {
			assert.Contains(t, m.errs, e.Path, "seed %d", seed)
		}
	}
}

func TestWalk_LocalSymlinkToDirectoryCountsAsContent(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()
	holder := filepath.Join(root, "holder")
	require.NoError(t, os.Mkdir(holder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), []byte("x"), 0o644))
	if err := os.Symlink(target, filepath.Join(holder, "link")); err != nil {
		t.Skipf("symlink not available on this platform: %v", err)
	}

	l := NewLocalLister()
	resolved, err := l.Resolve(context.Background(), root)
	require.NoError(t, err)

	res := NewWalker(l, noise.Default(), 0, nil).Walk(context.Background(), resolved, NewToken(), nil)
	assert.Empty(t, res.Entries, "a symlink is content, not an empty directory")
}

func TestIsEffectivelyEmpty(t *testing.T) {
	m := newMemFS("/r", "a/b/.DS_Store", "c/file")
	m.errs["/r/locked"] = fs.ErrPermission
	m.add("/r/locked", true)

	ok, err := IsEffectivelyEmpty(context.Background(), m, noise.Default(), "/r/a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsEffectivelyEmpty(context.Background(), m, noise.Default(), "/r/c")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsEffectivelyEmpty(context.Background(), m, noise.Default(), "/r/missing")
	assert.False(t, ok)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	ok, err = IsEffectivelyEmpty(context.Background(), m, noise.Default(), "/r/locked")
	assert.False(t, ok)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

// ctxLister fails a listing with the context error once ctx is done, the
// way the SFTP lister does.
type ctxLister struct {
	*memFS
}

func (l ctxLister) ReadDir(ctx context.Context, dir string) ([]Child, error) {
	children, err := l.memFS.ReadDir(ctx, dir)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return children, err
}

func TestWalk_ContextCancelledDuringListing(t *testing.T) {
	for _, dir := range []string{"/r", "/r/a", "/r/b"} {
		t.Run(dir, func(t *testing.T) {
			m := newMemFS("/r", "a/", "b/")
			full := NewWalker(m, noise.Default(), 0, nil).Walk(context.Background(), "/r", NewToken(), nil)
			require.Equal(t, []string{"/r"}, model.Paths(full.Entries))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			m.onRead = func(d string) {
				if d == dir {
					cancel()
				}
			}

			tok := NewToken()
			res := NewWalker(ctxLister{m}, noise.Default(), 0, nil).Walk(ctx, "/r", tok, nil)
			assert.True(t, res.Cancelled)
			assert.Equal(t, Cancelled, tok.State())
			assert.Empty(t, res.Entries, "an interrupted listing must not settle anything")
			assert.Empty(t, res.Errors)
			assert.False(t, res.RootEmpty)
		})
	}
}

func TestWalk_DeadlineDuringListingIsNotAScanError(t *testing.T) {
	m := newMemFS("/r", "keep.txt", "a/", "b/c/")
	m.errs["/r/b"] = fmt.Errorf("sftp read: %w", context.DeadlineExceeded)

	res := NewWalker(m, noise.Default(), 0, nil).Walk(context.Background(), "/r", NewToken(), nil)
	assert.True(t, res.Cancelled)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{"/r/a"}, model.Paths(res.Entries))
	assert.Equal(t, int64(2), res.Scanned)
}

func TestWalk_ArenaRecyclesSettledFrames(t *testing.T) {
	const (
		branches = 50
		depth    = 10
	)
	var paths []string
	for i := 0; i < branches; i++ {
		p := fmt.Sprintf("d%02d", i)
		for j := 1; j < depth; j++ {
			p += fmt.Sprintf("/c%d", j)
		}
		paths = append(paths, p+"/file")
	}
	paths = append(paths, "empty/x/y/")
	m := newMemFS("/r", paths...)

	res := NewWalker(m, noise.Default(), 0, nil).Walk(context.Background(), "/r", NewToken(), nil)
	assert.Equal(t, []string{"/r/empty"}, model.Paths(res.Entries))
	assert.Equal(t, int64(1+branches*depth+3), res.Scanned)
	// Root, one frame per pending branch, and one live chain.
	assert.LessOrEqual(t, res.arenaSize, 1+branches+1+depth)
}
