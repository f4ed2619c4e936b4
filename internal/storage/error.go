package storage

import "errors"

var (
	// ErrBlockOutOfRange is returned when a block outside of the volume is
	// addressed.
	ErrBlockOutOfRange = errors.New("block index out of range")

	// ErrShortWrite is returned when the operating system accepts no more
	// bytes for a block write.
	ErrShortWrite = errors.New("short write")

	// ErrLocked is returned when the image is locked by a handle that was
	// not opened through the same [Handler].
	ErrLocked = errors.New("image is locked by another handle")
)
