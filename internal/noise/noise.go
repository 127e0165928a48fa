// Package noise decides which directory entries are system-generated
// artifacts that do not count as content.
package noise

import "strings"

// DefaultNames are the marker files written by Finder, Explorer and the
// Windows shell.
var DefaultNames = []string{".DS_Store", "Thumbs.db", "desktop.ini"}

// Rules is an ordered set of exact, case-sensitive file names.
// A Rules value is read-only once built and safe for concurrent use.
type Rules struct {
	names []string
	set   map[string]struct{}
}

// New builds a rule set from names. Blank names and duplicates are dropped;
// the first occurrence fixes the order.
func New(names ...string) *Rules {
	r := &Rules{set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		if _, dup := r.set[n]; dup {
			continue
		}
		r.set[n] = struct{}{}
		r.names = append(r.names, n)
	}
	return r
}

// Default returns the rule set built from DefaultNames.
func Default() *Rules {
	return New(DefaultNames...)
}

// IsNoise reports whether name matches a rule exactly.
// A nil rule set matches nothing.
func (r *Rules) IsNoise(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.set[name]
	return ok
}

// Names returns a copy of the configured names in rule order.
func (r *Rules) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of rules.
func (r *Rules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

func (r *Rules) String() string {
	return strings.Join(r.Names(), ", ")
}
