package io

import "errors"

var (
	// ErrHashMismatch is an error that occurs when there is a source/destination hash
	// mismatch after relocating an extent, this usually means that there are
	// underlying transfer/hardware issues.
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrExtentRange is an error that occurs when an extent does not lie within
	// the data blocks of the volume.
	ErrExtentRange = errors.New("extent out of range")

	// ErrPartialBlock is an error that occurs when data to be written does not
	// span a whole number of blocks.
	ErrPartialBlock = errors.New("data is not block aligned")
)
