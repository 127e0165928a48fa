package model

import (
	pathpkg "path"
	"path/filepath"
	"strings"
)

// DirectoryEntry is a directory the walker classified as effectively empty.
// Entries are created once and never re-evaluated.
type DirectoryEntry struct {
	Path       string `json:"path" yaml:"path"`         // Absolute, cleaned path
	IsEmpty    bool   `json:"is_empty" yaml:"is_empty"` // Always true for reported entries
	EntryCount int    `json:"entry_count" yaml:"entry_count"`
	NoiseCount int    `json:"noise_count" yaml:"noise_count"` // Noise files anywhere in the subtree
	Depth      int    `json:"depth" yaml:"depth"`             // 0 for the scan root
}

// Name returns the final path element. Both slash styles are accepted so
// remote (POSIX) paths render correctly on Windows.
func (e DirectoryEntry) Name() string {
	p := e.Path
	if strings.Contains(p, "/") && !strings.Contains(p, `\`) {
		return pathpkg.Base(p)
	}
	return filepath.Base(p)
}

// Paths returns the paths of entries in order.
func Paths(entries []DirectoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

// TotalNoise sums NoiseCount across entries.
func TotalNoise(entries []DirectoryEntry) int {
	total := 0
	for _, e := range entries {
		total += e.NoiseCount
	}
	return total
}
