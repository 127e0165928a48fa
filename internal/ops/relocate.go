package ops

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/sadopc/voidfinder/internal/model"
	"github.com/sadopc/voidfinder/internal/noise"
	"github.com/sadopc/voidfinder/internal/scanner"
)

// Trasher moves a path to a recoverable location.
type Trasher interface {
	Trash(path string) error
}

// Runner relocates batches of reported folders to the trash.
type Runner struct {
	trasher Trasher
	lister  scanner.Lister
	rules   *noise.Rules
	root    string
	logger  *slog.Logger
}

// NewRunner creates a runner. Paths outside root are refused; root itself
// is accepted because an empty scan root is reported too.
func NewRunner(trasher Trasher, lister scanner.Lister, rules *noise.Rules, root string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{trasher: trasher, lister: lister, rules: rules, root: root, logger: logger}
}

// Relocate processes each distinct path independently and reports every
// one of them exactly once, in input order. A failure never stops the
// batch and nothing is retried.
func (r *Runner) Relocate(ctx context.Context, paths []string) model.RelocationReport {
	var report model.RelocationReport
	seen := make(map[string]struct{}, len(paths))

	for _, p := range paths {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}

		if err := r.relocateOne(ctx, p); err != nil {
			relErr := CategorizeError(p, err)
			r.logger.Warn("relocation failed", "path", p, "reason", relErr.Reason.String(), "err", relErr.Err)
			report.Record(model.RelocationOutcome{Path: p, Status: model.StatusFailed, Reason: relErr.UserMessage()})
			continue
		}
		r.logger.Info("moved to trash", "path", p)
		report.Record(model.RelocationOutcome{Path: p, Status: model.StatusMoved})
	}
	return report
}

func (r *Runner) relocateOne(ctx context.Context, p string) error {
	if !r.insideRoot(p) {
		return &RelocationError{Path: p, Reason: ReasonOutsideRoot}
	}

	// The listing is stale by now; check the whole subtree again.
	empty, err := scanner.IsEffectivelyEmpty(ctx, r.lister, r.rules, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &RelocationError{Path: p, Reason: ReasonNotFound, Err: err}
		}
		return err
	}
	if !empty {
		return &RelocationError{Path: p, Reason: ReasonNoLongerEmpty}
	}

	return r.trasher.Trash(p)
}

// insideRoot uses the lister's own path rules so remote POSIX paths are
// compared correctly from any client OS.
func (r *Runner) insideRoot(p string) bool {
	if p == "" || r.root == "" {
		return false
	}
	clean := r.lister.Join(p, "")
	root := r.lister.Join(r.root, "")
	if clean == root {
		return true
	}
	prefix := strings.TrimSuffix(r.lister.Join(root, "x"), "x")
	return strings.HasPrefix(clean, prefix)
}
