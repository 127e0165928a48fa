package remote

import (
	"bytes"
	"fmt"
	"io"
	"os"
	pathpkg "path"
	"sort"
	"strings"
	"sync"
	"time"
)

// fakeSFTP is an in-memory SFTP server view. Seed paths are relative to
// home unless absolute; directories end in "/" and symlinks read "link -> target".
type fakeSFTP struct {
	mu      sync.Mutex
	home    string
	nodes   map[string]*fakeNode
	readErr map[string]error
	failOps map[string]error // keyed by "op path"
}

type fakeNode struct {
	mode os.FileMode
	data bytes.Buffer
}

func newFakeSFTP(home string, paths ...string) *fakeSFTP {
	f := &fakeSFTP{
		home:    home,
		nodes:   map[string]*fakeNode{"/": {mode: os.ModeDir | 0o755}},
		readErr: map[string]error{},
		failOps: map[string]error{},
	}
	f.mkdirAll(home)
	for _, p := range paths {
		if !strings.HasPrefix(p, "/") {
			p = home + "/" + p
		}
		switch {
		case strings.Contains(p, " -> "):
			link, _, _ := strings.Cut(p, " -> ")
			f.mkdirAll(pathpkg.Dir(link))
			f.nodes[link] = &fakeNode{mode: os.ModeSymlink | 0o777}
		case strings.HasSuffix(p, "/"):
			f.mkdirAll(strings.TrimSuffix(p, "/"))
		default:
			f.mkdirAll(pathpkg.Dir(p))
			f.nodes[p] = &fakeNode{mode: 0o644}
		}
	}
	return f
}

func (f *fakeSFTP) mkdirAll(p string) {
	p = cleanRemotePath(p)
	for p != "/" && p != "." {
		if _, ok := f.nodes[p]; !ok {
			f.nodes[p] = &fakeNode{mode: os.ModeDir | 0o755}
		}
		p = pathpkg.Dir(p)
	}
}

func (f *fakeSFTP) abs(p string) string {
	p = cleanRemotePath(p)
	if !pathpkg.IsAbs(p) {
		p = pathpkg.Join(f.home, p)
	}
	return p
}

func (f *fakeSFTP) fail(op, p string) error {
	return f.failOps[op+" "+p]
}

func (f *fakeSFTP) ReadDir(p string) ([]os.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = f.abs(p)
	if err := f.readErr[p]; err != nil {
		return nil, err
	}
	node, ok := f.nodes[p]
	if !ok {
		return nil, os.ErrNotExist
	}
	if !node.mode.IsDir() {
		return nil, fmt.Errorf("not a directory")
	}

	var out []os.FileInfo
	for name, n := range f.nodes {
		if name != "/" && pathpkg.Dir(name) == p {
			out = append(out, fakeInfo{name: pathpkg.Base(name), mode: n.mode, size: int64(n.data.Len())})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (f *fakeSFTP) Stat(p string) (os.FileInfo, error) {
	return f.Lstat(p)
}

func (f *fakeSFTP) Lstat(p string) (os.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = f.abs(p)
	node, ok := f.nodes[p]
	if !ok {
		return nil, os.ErrNotExist
	}
	return fakeInfo{name: pathpkg.Base(p), mode: node.mode, size: int64(node.data.Len())}, nil
}

func (f *fakeSFTP) RealPath(p string) (string, error) {
	if err := f.fail("realpath", p); err != nil {
		return "", err
	}
	return f.abs(p), nil
}

func (f *fakeSFTP) MkdirAll(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = f.abs(p)
	if err := f.fail("mkdir", p); err != nil {
		return err
	}
	f.mkdirAll(p)
	return nil
}

func (f *fakeSFTP) Rename(oldname, newname string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oldname, newname = f.abs(oldname), f.abs(newname)
	if err := f.fail("rename", oldname); err != nil {
		return err
	}
	if _, ok := f.nodes[oldname]; !ok {
		return os.ErrNotExist
	}
	if _, ok := f.nodes[newname]; ok {
		return fmt.Errorf("rename %s: target exists", newname)
	}
	moved := map[string]*fakeNode{}
	for name, n := range f.nodes {
		if name == oldname || strings.HasPrefix(name, oldname+"/") {
			moved[newname+strings.TrimPrefix(name, oldname)] = n
			delete(f.nodes, name)
		}
	}
	for name, n := range moved {
		f.nodes[name] = n
	}
	return nil
}

func (f *fakeSFTP) Remove(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = f.abs(p)
	if _, ok := f.nodes[p]; !ok {
		return os.ErrNotExist
	}
	delete(f.nodes, p)
	return nil
}

func (f *fakeSFTP) CreateExclusive(p string) (io.WriteCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = f.abs(p)
	if _, ok := f.nodes[p]; ok {
		return nil, os.ErrExist
	}
	if _, ok := f.nodes[pathpkg.Dir(p)]; !ok {
		return nil, os.ErrNotExist
	}
	n := &fakeNode{mode: 0o600}
	f.nodes[p] = n
	return nopWriteCloser{&n.data}, nil
}

func (f *fakeSFTP) has(p string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.nodes[p]
	return ok
}

func (f *fakeSFTP) content(p string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.nodes[p]; ok {
		return n.data.String()
	}
	return ""
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type fakeInfo struct {
	name string
	size int64
	mode os.FileMode
}

func (fi fakeInfo) Name() string       { return fi.name }
func (fi fakeInfo) Size() int64        { return fi.size }
func (fi fakeInfo) Mode() os.FileMode  { return fi.mode }
func (fi fakeInfo) ModTime() time.Time { return time.Unix(1700000000, 0) }
func (fi fakeInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi fakeInfo) Sys() any           { return nil }
