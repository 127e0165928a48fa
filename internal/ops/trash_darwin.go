//go:build darwin

package ops

import (
	"os"
	"path/filepath"
)

// defaultLayout is the Finder trash. Finder keeps its own metadata.
func defaultLayout() (trashLayout, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return trashLayout{}, err
	}
	return trashLayout{files: filepath.Join(home, ".Trash")}, nil
}
