package model

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// SortField defines what to sort by.
type SortField int

const (
	SortByPath SortField = iota
	SortByName
	SortByDepth
	SortByNoise
)

func (f SortField) String() string {
	switch f {
	case SortByPath:
		return "Path"
	case SortByName:
		return "Name"
	case SortByDepth:
		return "Depth"
	case SortByNoise:
		return "Noise"
	default:
		return "?"
	}
}

// SortOrder defines ascending or descending.
type SortOrder int

const (
	SortAsc SortOrder = iota
	SortDesc
)

// SortConfig holds sort preferences.
type SortConfig struct {
	Field SortField
	Order SortOrder
}

// DefaultSort sorts by natural path order, ascending.
func DefaultSort() SortConfig {
	return SortConfig{Field: SortByPath, Order: SortAsc}
}

// SortEntries sorts entries in place. Ties fall back to path order so the
// result is deterministic.
func SortEntries(entries []DirectoryEntry, cfg SortConfig) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		// Swapping keeps a strict weak ordering for descending sorts.
		if cfg.Order == SortDesc {
			a, b = b, a
		}

		switch cfg.Field {
		case SortByName:
			an, bn := strings.ToLower(a.Name()), strings.ToLower(b.Name())
			if an != bn {
				return natural.Less(an, bn)
			}
		case SortByDepth:
			if a.Depth != b.Depth {
				return a.Depth < b.Depth
			}
		case SortByNoise:
			if a.NoiseCount != b.NoiseCount {
				return a.NoiseCount < b.NoiseCount
			}
		}
		return natural.Less(a.Path, b.Path)
	})
}

// Next cycles through sort fields.
func (f SortField) Next() SortField {
	return (f + 1) % (SortByNoise + 1)
}
