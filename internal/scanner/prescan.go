package scanner

import (
	"context"
	"errors"
	"io/fs"
	"runtime"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// CountDirs counts the directories under root, root included, using a
// parallel walk. It stops early when ctx is done or the token is cancelled;
// unreadable directories are counted but not descended.
func CountDirs(ctx context.Context, root string, token *Token) (int64, error) {
	var dirs atomic.Int64

	conf := fastwalk.Config{Follow: false, NumWorkers: runtime.NumCPU()}
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil || (token != nil && token.IsCancelRequested()) {
			return fs.SkipAll
		}
		if err != nil {
			return nil
		}
		if d.IsDir() {
			dirs.Add(1)
		}
		return nil
	}

	if err := fastwalk.Walk(&conf, root, walkFn); err != nil && !errors.Is(err, fs.SkipAll) {
		return dirs.Load(), err
	}
	return dirs.Load(), nil
}
