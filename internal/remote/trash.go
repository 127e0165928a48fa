package remote

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	pathpkg "path"
	"time"

	"github.com/sadopc/voidfinder/internal/ops"
)

// remoteTrashDir is the freedesktop home trash relative to the login directory.
const remoteTrashDir = ".local/share/Trash"

// SFTPTrash moves remote folders into a freedesktop trash on the server.
type SFTPTrash struct {
	client sftpClient
	dir    string
	now    func() time.Time
}

// NewSFTPTrash returns a trasher rooted at dir, or at the remote user's
// home trash when dir is empty.
func NewSFTPTrash(client sftpClient, dir string) *SFTPTrash {
	return &SFTPTrash{client: client, dir: dir, now: time.Now}
}

func (t *SFTPTrash) root() (string, error) {
	if t.dir != "" {
		return cleanRemotePath(t.dir), nil
	}
	home, err := t.client.RealPath(".")
	if err != nil {
		return "", fmt.Errorf("cannot resolve remote home: %w", err)
	}
	return pathpkg.Join(cleanRemotePath(home), remoteTrashDir), nil
}

// Trash renames p into the trash. SFTP rename never replaces an existing
// target, so a lost race surfaces as an error instead of a clobbered file.
func (t *SFTPTrash) Trash(p string) error {
	p = cleanRemotePath(p)
	if _, err := t.client.Lstat(p); err != nil {
		return err
	}

	root, err := t.root()
	if err != nil {
		return &ops.RelocationError{Path: p, Reason: ops.ReasonTrashUnavailable, Err: err}
	}
	files := pathpkg.Join(root, "files")
	info := pathpkg.Join(root, "info")
	for _, dir := range []string{files, info} {
		if err := t.client.MkdirAll(dir); err != nil {
			return &ops.RelocationError{Path: p, Reason: ops.ReasonTrashUnavailable, Err: err}
		}
	}

	name, infoPath, err := t.reserve(files, info, p)
	if err != nil {
		return err
	}
	if err := t.client.Rename(p, pathpkg.Join(files, name)); err != nil {
		_ = t.client.Remove(infoPath)
		return err
	}
	return nil
}

func (t *SFTPTrash) reserve(files, info, p string) (string, string, error) {
	base := pathpkg.Base(p)
	for n := 1; n < 10000; n++ {
		name := base
		if n > 1 {
			name = fmt.Sprintf("%s.%d", base, n)
		}
		infoPath := pathpkg.Join(info, name+".trashinfo")
		if t.exists(pathpkg.Join(files, name)) || t.exists(infoPath) {
			continue
		}

		w, err := t.client.CreateExclusive(infoPath)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", &ops.RelocationError{Path: p, Reason: ops.ReasonTrashUnavailable, Err: err}
		}
		_, werr := io.WriteString(w, ops.TrashInfo(p, t.now()))
		if cerr := w.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			_ = t.client.Remove(infoPath)
			return "", "", &ops.RelocationError{Path: p, Reason: ops.ReasonTrashUnavailable, Err: werr}
		}
		return name, infoPath, nil
	}
	return "", "", &ops.RelocationError{Path: p, Reason: ops.ReasonTrashUnavailable, Err: errors.New("no free name in trash")}
}

func (t *SFTPTrash) exists(p string) bool {
	_, err := t.client.Lstat(p)
	return err == nil
}
