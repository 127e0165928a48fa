package ops

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/sadopc/voidfinder/internal/noise"
	"github.com/sadopc/voidfinder/internal/scanner"
)

// Details describes one folder as it is now, not as it was when scanned.
type Details struct {
	Path    string
	Exists  bool
	Empty   bool
	Size    int64
	HasSize bool
	ModTime time.Time
	Noise   []string // Noise files directly inside the folder
}

// StatFunc returns the total file size under path and its modification time.
type StatFunc func(ctx context.Context, path string) (int64, time.Time, error)

// Inspector gathers Details through a lister.
type Inspector struct {
	lister scanner.Lister
	rules  *noise.Rules
	stat   StatFunc
}

// NewInspector creates an inspector. stat may be nil when sizes cannot be
// computed cheaply.
func NewInspector(lister scanner.Lister, rules *noise.Rules, stat StatFunc) *Inspector {
	return &Inspector{lister: lister, rules: rules, stat: stat}
}

// Inspect re-reads path. A missing folder is not an error: Exists is false.
func (in *Inspector) Inspect(ctx context.Context, path string) (Details, error) {
	d := Details{Path: path}

	children, err := in.lister.ReadDir(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return d, err
	}
	d.Exists = true
	for _, c := range children {
		if in.rules.IsNoise(c.Name) {
			d.Noise = append(d.Noise, c.Name)
		}
	}

	d.Empty, err = scanner.IsEffectivelyEmpty(ctx, in.lister, in.rules, path)
	if err != nil {
		return d, err
	}

	if in.stat != nil {
		if n, mod, err := in.stat(ctx, path); err == nil {
			d.Size, d.ModTime, d.HasSize = n, mod, true
		}
	}
	return d, nil
}

// LocalStat is the StatFunc for the local filesystem.
func LocalStat(ctx context.Context, path string) (int64, time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, time.Time{}, err
	}
	size, err := DirSize(ctx, path)
	return size, info.ModTime(), err
}

// DirSize sums file sizes under path with a parallel walk. Symlinks are
// not followed.
func DirSize(ctx context.Context, path string) (int64, error) {
	var total atomic.Int64
	walk := func(_ string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total.Add(info.Size())
		return nil
	}
	err := fastwalk.Walk(&fastwalk.Config{Follow: false}, path, walk)
	if ctx.Err() != nil {
		return total.Load(), ctx.Err()
	}
	return total.Load(), err
}
