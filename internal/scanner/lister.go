package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Child is one entry of a directory listing.
type Child struct {
	Name  string
	IsDir bool // As reported by the listing; symlinks are never directories
}

// Lister is the filesystem seam used by the walker and the relocation runner.
type Lister interface {
	// Resolve normalizes root and verifies it is an existing directory.
	Resolve(ctx context.Context, root string) (string, error)
	// ReadDir lists the direct children of dir.
	ReadDir(ctx context.Context, dir string) ([]Child, error)
	// Join builds a child path using the lister's path semantics.
	Join(dir, name string) string
}

// LocalLister lists the local filesystem with os.ReadDir.
type LocalLister struct{}

// NewLocalLister returns a lister for the local filesystem.
func NewLocalLister() *LocalLister {
	return &LocalLister{}
}

func (LocalLister) Resolve(_ context.Context, root string) (string, error) {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %s: %w", root, err)
	}

	// Stat (not Lstat) so a symlinked root like /tmp -> /private/tmp is accepted.
	info, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", &os.PathError{Op: "scan", Path: absPath, Err: ErrNotDirectory}
	}
	return filepath.Clean(absPath), nil
}

func (LocalLister) ReadDir(_ context.Context, dir string) ([]Child, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	children := make([]Child, len(entries))
	for i, e := range entries {
		children[i] = Child{Name: e.Name(), IsDir: e.IsDir()}
	}
	return children, nil
}

func (LocalLister) Join(dir, name string) string {
	return filepath.Join(dir, name)
}
