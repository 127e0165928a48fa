//go:build !linux

package ops

func renameNoReplace(src, dst string) error {
	return checkedRename(src, dst)
}
