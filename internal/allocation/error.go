package allocation

import (
	"errors"
)

var (
	// ErrNoExtent is an error that is returned when the bitmap holds no run of
	// free blocks of the requested size.
	ErrNoExtent = errors.New("no contiguous run of free blocks")

	// ErrCannotExpand is an error that is returned when a file can neither
	// grow in place nor be relocated to an extent of the requested size.
	ErrCannotExpand = errors.New("cannot expand")

	// ErrNotFile is an error that should not be possible under normal
	// circumstances, it is returned when an extent operation targets a slot
	// that is not an in-use file.
	ErrNotFile = errors.New("slot is not an in-use file")
)
