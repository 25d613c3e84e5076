package filekit

import "errors"

// Common errors
var (
	ErrNotExist    = errors.New("file does not exist")
	ErrExist       = errors.New("file already exists")
	ErrIsDir       = errors.New("is a directory")
	ErrInvalidPath = errors.New("invalid path")
	ErrUnavailable = errors.New("backend unavailable")
	ErrTooLarge    = errors.New("file too large")
)

// PathError records an error and the operation and file path that caused it.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error { return e.Err }

// IsNotExist reports whether err says a file or directory is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}

// IsUnavailable reports whether err comes from an unreachable backend.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
