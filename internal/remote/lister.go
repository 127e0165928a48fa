package remote

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	pathpkg "path"
	"strings"

	"github.com/sadopc/voidfinder/internal/scanner"
)

const defaultRemotePath = "."

// SFTPLister lists a remote filesystem with POSIX path rules. Entries are
// typed from the listing attributes, so symlinks are never directories.
type SFTPLister struct {
	client sftpClient
}

// Resolve makes root absolute on the server and checks it is a directory.
// An empty root means the remote home directory.
func (l *SFTPLister) Resolve(ctx context.Context, root string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(root) == "" {
		root = defaultRemotePath
	}

	rootPath := cleanRemotePath(root)
	if resolved, err := l.client.RealPath(rootPath); err == nil {
		rootPath = cleanRemotePath(resolved)
	}

	info, err := l.client.Stat(rootPath)
	if err != nil {
		return "", fmt.Errorf("cannot stat remote path %q: %w", rootPath, err)
	}
	if !info.IsDir() {
		return "", &fs.PathError{Op: "scan", Path: rootPath, Err: scanner.ErrNotDirectory}
	}
	return rootPath, nil
}

func (l *SFTPLister) ReadDir(ctx context.Context, dir string) ([]scanner.Child, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := readRemoteDir(ctx, l.client, dir)
	if err != nil {
		return nil, err
	}
	children := make([]scanner.Child, len(entries))
	for i, e := range entries {
		children[i] = scanner.Child{Name: e.Name(), IsDir: e.Mode().IsDir()}
	}
	return children, nil
}

func (l *SFTPLister) Join(dir, name string) string {
	return pathpkg.Join(dir, name)
}

func cleanRemotePath(p string) string {
	if p == "" {
		return defaultRemotePath
	}
	return pathpkg.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func readRemoteDir(ctx context.Context, client sftpClient, dirPath string) ([]os.FileInfo, error) {
	if rc, ok := client.(interface {
		ReadDirContext(context.Context, string) ([]os.FileInfo, error)
	}); ok {
		return rc.ReadDirContext(ctx, dirPath)
	}
	return client.ReadDir(dirPath)
}
