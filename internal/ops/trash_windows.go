//go:build windows

package ops

import (
	"errors"
	"os"
	"path/filepath"
)

// defaultLayout is an application trash under LocalAppData. Moving into the
// Recycle Bin needs the shell API.
func defaultLayout() (trashLayout, error) {
	base := os.Getenv("LOCALAPPDATA")
	if base == "" {
		return trashLayout{}, errors.New("LOCALAPPDATA is not set")
	}
	root := filepath.Join(base, "voidfinder", "Trash")
	return trashLayout{files: filepath.Join(root, "files"), info: filepath.Join(root, "info")}, nil
}
