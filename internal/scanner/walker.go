package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sadopc/voidfinder/internal/model"
	"github.com/sadopc/voidfinder/internal/noise"
)

// DefaultProgressEvery is how many directories are visited between two
// progress callbacks.
const DefaultProgressEvery = 500

// ScanError records a directory whose contents could not be verified.
type ScanError struct {
	Path string
	Err  error
}

func (e ScanError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e ScanError) Unwrap() error { return e.Err }

// WalkResult is the outcome of one walk. Entries is a prefix of the entries
// an uncancelled walk would report when Cancelled is set.
type WalkResult struct {
	Entries   []model.DirectoryEntry
	Cancelled bool
	RootEmpty bool
	Scanned   int64
	Errors    []ScanError

	arenaSize int // peak number of frames held at once
}

// Walker classifies directories bottom-up and reports the topmost
// effectively empty ones.
type Walker struct {
	lister Lister
	rules  *noise.Rules
	every  int
	logger *slog.Logger
}

// NewWalker creates a walker. every <= 0 disables intermediate progress.
func NewWalker(lister Lister, rules *noise.Rules, every int, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Walker{lister: lister, rules: rules, every: every, logger: logger}
}

// frame is one directory in the walk arena. A frame settles once it has been
// listed and all of its subdirectory frames have settled.
type frame struct {
	path     string
	parent   int // -1 for the root
	depth    int
	pending  int  // unsettled subdirectories
	nonEmpty bool // a non-noise file, a failed listing, or a non-empty child
	noise    int  // noise files in this frame and its empty descendants
	held     []int
}

// Walk traverses root, which must already be resolved by the lister. The
// token is checked before every listing; ctx is handed to the lister and a
// done ctx is treated as a cancel request.
func (w *Walker) Walk(ctx context.Context, root string, token *Token, onProgress func(Progress)) WalkResult {
	if token == nil {
		token = NewToken()
	}

	var (
		res      WalkResult
		found    int64
		arena    = []frame{{path: root, parent: -1}}
		stack    = []int{0}
		errCount int64
		free     []int
		kids     []int
	)

	// Settled frames that nothing refers to any more are recycled, so the
	// arena grows with the pending frontier rather than the whole tree.
	alloc := func(f frame) int {
		if n := len(free); n > 0 {
			idx := free[n-1]
			free = free[:n-1]
			arena[idx] = f
			return idx
		}
		arena = append(arena, f)
		return len(arena) - 1
	}
	release := func(idx int) {
		arena[idx] = frame{}
		free = append(free, idx)
	}

	emit := func(idx int) {
		f := &arena[idx]
		res.Entries = append(res.Entries, model.DirectoryEntry{
			Path:       f.path,
			IsEmpty:    true,
			NoiseCount: f.noise,
			Depth:      f.depth,
		})
		found++
	}

	// settle walks upward from idx for as long as frames complete.
	settle := func(idx int) {
		for {
			f := &arena[idx]
			empty := !f.nonEmpty
			// Anything still held is subsumed by f.
			for _, h := range f.held {
				release(h)
			}
			f.held = nil

			if f.parent < 0 {
				res.RootEmpty = empty
				if empty {
					emit(idx)
				}
				return
			}

			parent := f.parent
			p := &arena[parent]
			switch {
			case empty && p.nonEmpty:
				emit(idx)
				release(idx)
			case empty:
				// Parent still undecided: it either subsumes idx or flushes it.
				p.noise += f.noise
				p.held = append(p.held, idx)
			case !p.nonEmpty:
				p.nonEmpty = true
				for _, h := range p.held {
					emit(h)
					release(h)
				}
				p.held = nil
				release(idx)
			default:
				release(idx)
			}

			p.pending--
			if p.pending > 0 {
				return
			}
			idx = parent
		}
	}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			token.RequestCancel()
		}
		if token.IsCancelRequested() {
			token.Acknowledge()
			res.Cancelled = true
			break
		}

		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		dir := arena[idx].path

		children, err := w.lister.ReadDir(ctx, dir)
		if err != nil && (ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			// An interrupted listing says nothing about dir.
			token.RequestCancel()
			token.Acknowledge()
			res.Cancelled = true
			break
		}
		res.Scanned++
		if err != nil {
			errCount++
			res.Errors = append(res.Errors, ScanError{Path: dir, Err: err})
			w.logger.Debug("cannot list directory, treating as non-empty", "path", dir, "err", err)
			arena[idx].nonEmpty = true
			settle(idx)
		} else {
			kids = kids[:0]
			for _, c := range children {
				switch {
				case w.rules.IsNoise(c.Name):
					arena[idx].noise++
				case c.IsDir:
					kids = append(kids, alloc(frame{
						path:   w.lister.Join(dir, c.Name),
						parent: idx,
						depth:  arena[idx].depth + 1,
					}))
					arena[idx].pending++
				default:
					arena[idx].nonEmpty = true
				}
			}
			// Reverse push keeps listing order for the depth-first descent.
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, kids[i])
			}
			if arena[idx].pending == 0 {
				settle(idx)
			}
		}

		if onProgress != nil && w.every > 0 && res.Scanned%int64(w.every) == 0 {
			onProgress(Progress{
				CurrentPath: dir,
				Scanned:     res.Scanned,
				Found:       found,
				Errors:      errCount,
			})
		}
	}

	res.arenaSize = len(arena)
	return res
}

// IsEffectivelyEmpty walks path and reports whether it is empty under rules.
// A listing error anywhere makes the answer false; an error listing path
// itself is returned.
func IsEffectivelyEmpty(ctx context.Context, lister Lister, rules *noise.Rules, path string) (bool, error) {
	res := NewWalker(lister, rules, 0, nil).Walk(ctx, path, NewToken(), nil)
	if res.Cancelled {
		return false, ctx.Err()
	}
	for _, e := range res.Errors {
		if e.Path == path {
			return false, e.Err
		}
	}
	return res.RootEmpty, nil
}
