package ops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// trashLayout is where trashed folders and their metadata go. An empty
// info directory means the platform keeps no metadata.
type trashLayout struct {
	files string
	info  string
}

// LocalTrash moves local folders into the user's trash.
type LocalTrash struct {
	// Dir overrides the platform trash. It gets the freedesktop layout.
	Dir string

	now func() time.Time
}

// NewLocalTrash returns a trasher for the platform trash, or for dir when
// it is not empty.
func NewLocalTrash(dir string) *LocalTrash {
	return &LocalTrash{Dir: dir, now: time.Now}
}

func (t *LocalTrash) layout() (trashLayout, error) {
	if t.Dir != "" {
		return trashLayout{files: filepath.Join(t.Dir, "files"), info: filepath.Join(t.Dir, "info")}, nil
	}
	return defaultLayout()
}

// Trash moves path into the trash and returns the first error.
func (t *LocalTrash) Trash(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(abs); err != nil {
		return err
	}

	lay, err := t.layout()
	if err != nil {
		return &RelocationError{Path: abs, Reason: ReasonTrashUnavailable, Err: err}
	}
	for _, dir := range []string{lay.files, lay.info} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return &RelocationError{Path: abs, Reason: ReasonTrashUnavailable, Err: err}
		}
	}

	name, infoPath, err := t.reserve(lay, abs)
	if err != nil {
		return err
	}
	dst := filepath.Join(lay.files, name)

	if err := moveTree(abs, dst); err != nil {
		if infoPath != "" {
			os.Remove(infoPath)
		}
		return err
	}
	return nil
}

// reserve picks a free name in the trash. With an info directory the name
// is claimed by creating its .trashinfo file exclusively.
func (t *LocalTrash) reserve(lay trashLayout, abs string) (string, string, error) {
	base := filepath.Base(abs)
	now := time.Now
	if t.now != nil {
		now = t.now
	}

	for n := 1; n < 10000; n++ {
		name := base
		if n > 1 {
			name = fmt.Sprintf("%s.%d", base, n)
		}
		if _, err := os.Lstat(filepath.Join(lay.files, name)); err == nil {
			continue
		}
		if lay.info == "" {
			return name, "", nil
		}

		infoPath := filepath.Join(lay.info, name+".trashinfo")
		f, err := os.OpenFile(infoPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", &RelocationError{Path: abs, Reason: ReasonTrashUnavailable, Err: err}
		}
		_, werr := io.WriteString(f, TrashInfo(abs, now()))
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			os.Remove(infoPath)
			return "", "", &RelocationError{Path: abs, Reason: ReasonTrashUnavailable, Err: werr}
		}
		return name, infoPath, nil
	}
	return "", "", &RelocationError{Path: abs, Reason: ReasonTrashUnavailable, Err: errors.New("no free name in trash")}
}

// TrashInfo renders a freedesktop.org .trashinfo file.
func TrashInfo(original string, at time.Time) string {
	u := url.URL{Path: filepath.ToSlash(original)}
	var b strings.Builder
	b.WriteString("[Trash Info]\n")
	b.WriteString("Path=" + u.EscapedPath() + "\n")
	b.WriteString("DeletionDate=" + at.Format("2006-01-02T15:04:05") + "\n")
	return b.String()
}

// moveTree renames src to dst, copying and removing when they sit on
// different devices.
func moveTree(src, dst string) error {
	err := renameNoReplace(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyTree(src, dst); err != nil {
		os.RemoveAll(dst)
		return err
	}
	return os.RemoveAll(src)
}

// copyTree copies directories and regular files. Other entries are
// recreated as symlinks when possible and skipped otherwise.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.Mkdir(target, 0o700)
		case d.Type().IsRegular():
			return copyFile(p, target)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(p)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		}
		return nil
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
