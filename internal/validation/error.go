package validation

import (
	"errors"
	"fmt"
)

var (
	// ErrFreeNotZero occurs when a free inode has a non-zero byte.
	ErrFreeNotZero = errors.New("free inode is not zeroed")

	// ErrFileExtent occurs when a file starts outside of the data blocks or
	// extends past the end of the volume.
	ErrFileExtent = errors.New("file extent out of range")

	// ErrDirectoryFields occurs when a directory has a size or a start block.
	ErrDirectoryFields = errors.New("directory has size or start block")

	// ErrInvalidParent occurs when an inode references the reserved invalid
	// parent index.
	ErrInvalidParent = errors.New("invalid parent reference")

	// ErrParentNotDirectory occurs when an inode references a parent slot that
	// is not an in-use directory.
	ErrParentNotDirectory = errors.New("parent is not an in-use directory")

	// ErrParentCycle occurs when the parents of a directory never lead back to
	// the root.
	ErrParentCycle = errors.New("directory does not connect to the root")

	// ErrDuplicateName occurs when two inodes with the same parent share a
	// name.
	ErrDuplicateName = errors.New("duplicate name in directory")

	// ErrBitmapMismatch occurs when the bitmap disagrees with the extents of
	// the in-use files.
	ErrBitmapMismatch = errors.New("bitmap does not match file extents")
)

// InconsistencyError is returned by [Check] for a superblock that violates
// one of the consistency checks. Code is the number of the violated check.
type InconsistencyError struct {
	Code int
	Err  error
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("inconsistent (error code: %d): %v", e.Code, e.Err)
}

func (e *InconsistencyError) Unwrap() error {
	return e.Err
}
