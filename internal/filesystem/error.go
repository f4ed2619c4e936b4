package filesystem

import (
	"errors"
	"fmt"
)

var (
	// ErrNotMounted is an error that occurs when an operation needs a mounted
	// volume, but none is mounted.
	ErrNotMounted = errors.New("no file system is mounted")

	// ErrDiskNotFound is an error that occurs when the image of a volume to
	// be mounted cannot be opened or read.
	ErrDiskNotFound = errors.New("cannot find disk")

	// ErrInconsistent is an error that occurs when a volume to be mounted
	// fails one of the consistency checks.
	ErrInconsistent = errors.New("file system is inconsistent")

	// ErrSuperblockFull is an error that occurs when no free inode is left.
	ErrSuperblockFull = errors.New("superblock is full")

	// ErrExists is an error that occurs when a name is already taken in the
	// current directory, or is one of the reserved names.
	ErrExists = errors.New("file or directory already exists")

	// ErrCannotAllocate is an error that occurs when no run of free blocks
	// is large enough for a new file.
	ErrCannotAllocate = errors.New("cannot allocate blocks")

	// ErrNotExist is an error that occurs when no file or directory of a
	// name exists in the current directory.
	ErrNotExist = errors.New("file or directory does not exist")

	// ErrFileNotExist is an error that occurs when no file of a name exists
	// in the current directory.
	ErrFileNotExist = errors.New("file does not exist")

	// ErrBlockRange is an error that occurs when a block index lies outside
	// of a file.
	ErrBlockRange = errors.New("block out of range")

	// ErrCannotExpand is an error that occurs when a file can neither grow in
	// place nor be relocated.
	ErrCannotExpand = errors.New("cannot expand")

	// ErrDirNotExist is an error that occurs when no directory of a name
	// exists in the current directory.
	ErrDirNotExist = errors.New("directory does not exist")

	// ErrInvalidArgument is an error that occurs when an operation is called
	// with a name or size that can never be valid. Command interpreters reject
	// those before calling into a [Handler].
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error is a classified failure of a file system operation. Its message is
// the one presented to the user, while [errors.Is] matches the sentinel of
// its class and the underlying cause, if any.
type Error struct {
	Kind error
	Err  error
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func newError(kind error, cause error, format string, args ...any) *Error {
	return &Error{
		Kind: kind,
		Err:  cause,
		msg:  fmt.Sprintf(format, args...),
	}
}

func errNotMounted() *Error {
	return newError(ErrNotMounted, nil, "Error: No file system is mounted")
}

func errDiskNotFound(disk string, cause error) *Error {
	return newError(ErrDiskNotFound, cause, "Error: Cannot find disk %s", disk)
}

func errInconsistent(disk string, code int, cause error) *Error {
	return newError(ErrInconsistent, cause, "Error: File system in %s is inconsistent (error code: %d)", disk, code)
}

func errSuperblockFull(disk string, name string) *Error {
	return newError(ErrSuperblockFull, nil, "Error: Superblock in disk %s is full, cannot create %s", disk, name)
}

func errExists(name string) *Error {
	return newError(ErrExists, nil, "Error: File or directory %s already exists", name)
}

func errCannotAllocate(size int, disk string, cause error) *Error {
	return newError(ErrCannotAllocate, cause, "Error: Cannot allocate %d blocks on %s", size, disk)
}

func errNotExist(name string) *Error {
	return newError(ErrNotExist, nil, "Error: File or directory %s does not exist", name)
}

func errFileNotExist(name string) *Error {
	return newError(ErrFileNotExist, nil, "Error: File %s does not exist", name)
}

func errBlockRange(name string, block int) *Error {
	return newError(ErrBlockRange, nil, "Error: %s does not have block %d", name, block)
}

func errCannotExpand(name string, size int, cause error) *Error {
	return newError(ErrCannotExpand, cause, "Error: File %s cannot expand to size %d", name, size)
}

func errDirNotExist(name string) *Error {
	return newError(ErrDirNotExist, nil, "Error: Directory %s does not exist", name)
}
