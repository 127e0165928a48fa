package ops

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// FailureReason categorizes why a folder could not be relocated.
type FailureReason int

const (
	ReasonNotFound FailureReason = iota
	ReasonNoLongerEmpty
	ReasonOutsideRoot
	ReasonPermissionDenied
	ReasonInUse
	ReasonCrossDevice
	ReasonTrashUnavailable
	ReasonUnknown
)

// String returns a short label for the reason.
func (r FailureReason) String() string {
	switch r {
	case ReasonNotFound:
		return "Not found"
	case ReasonNoLongerEmpty:
		return "No longer empty"
	case ReasonOutsideRoot:
		return "Outside scan root"
	case ReasonPermissionDenied:
		return "Permission denied"
	case ReasonInUse:
		return "In use"
	case ReasonCrossDevice:
		return "Cross-device move"
	case ReasonTrashUnavailable:
		return "Trash unavailable"
	case ReasonUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// RelocationError describes a path the runner could not move.
type RelocationError struct {
	Path   string
	Reason FailureReason
	Err    error
}

func (e *RelocationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Err)
}

func (e *RelocationError) Unwrap() error { return e.Err }

// UserMessage is the reason text shown in reports.
func (e *RelocationError) UserMessage() string {
	switch e.Reason {
	case ReasonNotFound:
		return "Folder not found (already moved or deleted)."
	case ReasonNoLongerEmpty:
		return "No longer empty."
	case ReasonOutsideRoot:
		return "Outside scan root."
	case ReasonPermissionDenied:
		return "Permission denied."
	case ReasonInUse:
		return "Folder is in use."
	case ReasonCrossDevice:
		return "Cannot move across devices."
	case ReasonTrashUnavailable:
		if e.Err != nil {
			return fmt.Sprintf("Trash unavailable: %v", e.Err)
		}
		return "Trash unavailable."
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "Unknown error."
	}
}

// CategorizeError wraps err in a RelocationError with a reason derived from
// it. A RelocationError passes through unchanged.
func CategorizeError(path string, err error) *RelocationError {
	if err == nil {
		return nil
	}

	var relErr *RelocationError
	if errors.As(err, &relErr) {
		return relErr
	}

	out := &RelocationError{Path: path, Err: err, Reason: ReasonUnknown}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		out.Reason = ReasonNotFound
		return out
	case errors.Is(err, fs.ErrPermission):
		out.Reason = ReasonPermissionDenied
		return out
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM, syscall.EROFS:
			out.Reason = ReasonPermissionDenied
		case syscall.EBUSY, syscall.ETXTBSY:
			out.Reason = ReasonInUse
		case syscall.ENOENT:
			out.Reason = ReasonNotFound
		case syscall.EXDEV:
			out.Reason = ReasonCrossDevice
		case syscall.ENOTEMPTY:
			out.Reason = ReasonNoLongerEmpty
		}
	}
	return out
}
