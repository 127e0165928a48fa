package ops

import (
	"fmt"
	"os/exec"
	"runtime"
)

// startCommand is replaced in tests.
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenInFileManager shows path in the platform file manager without
// waiting for it.
func OpenInFileManager(path string) error {
	switch runtime.GOOS {
	case "darwin":
		return startCommand("open", path)
	case "windows":
		return startCommand("explorer", path)
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return startCommand("xdg-open", path)
	default:
		return fmt.Errorf("opening a file manager is not supported on %s", runtime.GOOS)
	}
}
