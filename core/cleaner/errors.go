package cleaner

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

var (
	// ErrRootNotDirectory is returned when the destination root exists but is not a directory.
	ErrRootNotDirectory = errors.New("destination root is not a directory")

	// ErrOutsideRoot is returned when a plan names the root itself or a path outside it.
	ErrOutsideRoot = errors.New("path is not below the destination root")

	// ErrRootMismatch is returned when a plan is applied by a reconciler for another root.
	ErrRootMismatch = errors.New("plan was computed for a different destination root")
)

// TraversalError reports a failure while inspecting the destination tree.
// No removal happens once a traversal error has been returned.
type TraversalError struct {
	Root string
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("failed to scan %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// DeletionError reports the obsolete path whose removal failed.
// Paths removed before the failure stay removed.
type DeletionError struct {
	Path string
	Err  error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("failed to remove %s: %v", e.Path, e.Err)
}

func (e *DeletionError) Unwrap() error {
	return e.Err
}

// isNotExist treats ENOTDIR like ENOENT: a lookup below a plain file finds nothing.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
