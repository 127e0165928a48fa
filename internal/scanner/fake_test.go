package scanner

import (
	"context"
	"io/fs"
	pathpkg "path"
	"sort"
	"strings"
	"sync"

	"github.com/sadopc/voidfinder/internal/noise"
)

// memFS is an in-memory Lister. Paths ending in "/" are directories.
type memFS struct {
	mu     sync.Mutex
	dirs   map[string][]Child
	errs   map[string]error
	reads  []string
	onRead func(dir string)
}

func newMemFS(root string, paths ...string) *memFS {
	m := &memFS{
		dirs: map[string][]Child{root: nil},
		errs: map[string]error{},
	}
	for _, p := range paths {
		m.add(pathpkg.Join(root, p), strings.HasSuffix(p, "/"))
	}
	for dir := range m.dirs {
		children := m.dirs[dir]
		sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	}
	return m
}

func (m *memFS) add(full string, isDir bool) {
	if _, ok := m.dirs[full]; ok {
		return
	}
	parent := pathpkg.Dir(full)
	if _, ok := m.dirs[parent]; !ok {
		m.add(parent, true)
	}
	base := pathpkg.Base(full)
	for _, c := range m.dirs[parent] {
		if c.Name == base {
			return
		}
	}
	m.dirs[parent] = append(m.dirs[parent], Child{Name: base, IsDir: isDir})
	if isDir {
		m.dirs[full] = nil
	}
}

func (m *memFS) Resolve(_ context.Context, root string) (string, error) {
	root = pathpkg.Clean(root)
	if _, ok := m.dirs[root]; ok {
		return root, nil
	}
	for _, c := range m.dirs[pathpkg.Dir(root)] {
		if c.Name == pathpkg.Base(root) {
			return "", ErrNotDirectory
		}
	}
	return "", fs.ErrNotExist
}

func (m *memFS) ReadDir(_ context.Context, dir string) ([]Child, error) {
	m.mu.Lock()
	m.reads = append(m.reads, dir)
	hook := m.onRead
	m.mu.Unlock()
	if hook != nil {
		hook(dir)
	}

	if err := m.errs[dir]; err != nil {
		return nil, err
	}
	children, ok := m.dirs[dir]
	if !ok {
		return nil, fs.ErrNotExist
	}
	out := make([]Child, len(children))
	copy(out, children)
	return out, nil
}

func (m *memFS) Join(dir, name string) string {
	return pathpkg.Join(dir, name)
}

func (m *memFS) readCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reads)
}

// expectedTopmost is a direct recursive oracle for the emptiness rule.
func expectedTopmost(m *memFS, rules *noise.Rules, root string) []string {
	memo := map[string]bool{}
	var isEmpty func(dir string) bool
	isEmpty = func(dir string) bool {
		if v, ok := memo[dir]; ok {
			return v
		}
		empty := m.errs[dir] == nil
		if empty {
			for _, c := range m.dirs[dir] {
				if rules.IsNoise(c.Name) {
					continue
				}
				if !c.IsDir || !isEmpty(pathpkg.Join(dir, c.Name)) {
					empty = false
					break
				}
			}
		}
		memo[dir] = empty
		return empty
	}

	var out []string
	var collect func(dir string)
	collect = func(dir string) {
		if isEmpty(dir) {
			out = append(out, dir)
			return
		}
		if m.errs[dir] != nil {
			return
		}
		for _, c := range m.dirs[dir] {
			if c.IsDir && !rules.IsNoise(c.Name) {
				collect(pathpkg.Join(dir, c.Name))
			}
		}
	}
	collect(root)
	sort.Strings(out)
	return out
}
