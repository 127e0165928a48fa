//go:build !darwin && !windows

package ops

import (
	"os"
	"path/filepath"
)

// defaultLayout follows the freedesktop.org home trash.
func defaultLayout() (trashLayout, error) {
	data := os.Getenv("XDG_DATA_HOME")
	if data == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return trashLayout{}, err
		}
		data = filepath.Join(home, ".local", "share")
	}
	root := filepath.Join(data, "Trash")
	return trashLayout{files: filepath.Join(root, "files"), info: filepath.Join(root, "info")}, nil
}
