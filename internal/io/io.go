// Package io implements the block transfer primitives of the engine: the
// staging buffer, zeroing of extents, and copying and relocation of file
// extents with checksum verification.
package io

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/desertwitch/fssim/internal/schema"
	"github.com/zeebo/blake3"
)

// Handler is the principal implementation for the block transfer functions.
type Handler struct {
	verify bool
}

// NewHandler returns a pointer to a new io [Handler]. With verify set,
// relocated extents are read back and compared against the source checksum.
func NewHandler(verify bool) *Handler {
	return &Handler{
		verify: verify,
	}
}

// ReadExtent reads size blocks starting at start into one contiguous slice.
func ReadExtent(dev schema.BlockDevice, start, size int) ([]byte, error) {
	if err := checkExtent(start, size); err != nil {
		return nil, err
	}

	data := make([]byte, size*schema.BlockSize)

	var block [schema.BlockSize]byte
	for i := range size {
		if err := dev.ReadBlock(start+i, &block); err != nil {
			return nil, fmt.Errorf("(io) failed to read extent: %w", err)
		}
		copy(data[i*schema.BlockSize:], block[:])
	}

	return data, nil
}

// WriteExtent writes data, which must be a whole number of blocks, starting
// at block start.
func WriteExtent(dev schema.BlockDevice, start int, data []byte) error {
	if len(data)%schema.BlockSize != 0 {
		return fmt.Errorf("(io) %w: %d bytes", ErrPartialBlock, len(data))
	}

	size := len(data) / schema.BlockSize
	if err := checkExtent(start, size); err != nil {
		return err
	}

	var block [schema.BlockSize]byte
	for i := range size {
		copy(block[:], data[i*schema.BlockSize:])
		if err := dev.WriteBlock(start+i, &block); err != nil {
			return fmt.Errorf("(io) failed to write extent: %w", err)
		}
	}

	return nil
}

// ZeroExtent overwrites size blocks starting at start with zeroes.
func ZeroExtent(dev schema.BlockDevice, start, size int) error {
	if err := checkExtent(start, size); err != nil {
		return err
	}

	for b := start; b < start+size; b++ {
		if err := dev.ZeroBlock(b); err != nil {
			return fmt.Errorf("(io) failed to zero extent: %w", err)
		}
	}

	return nil
}

// Copy copies the extent of size blocks at from to to, leaving the source
// extent as it is. The whole source extent is read before anything is
// written, so the two extents may overlap. On failure the source extent is
// restored where possible and the destination blocks outside of it are
// zeroed.
func (h *Handler) Copy(dev schema.BlockDevice, from, to, size int) error {
	if from == to || size == 0 {
		return nil
	}

	if err := checkExtent(to, size); err != nil {
		return err
	}

	data, err := ReadExtent(dev, from, size)
	if err != nil {
		return err
	}

	if err := h.transfer(dev, to, data); err != nil {
		h.restore(dev, from, to, data)

		return err
	}

	slog.Debug("Copied extent",
		"from", from,
		"to", to,
		"size", size,
	)

	return nil
}

// Relocate moves the extent of size blocks at from to to, like [Handler.Copy],
// and zeroes the blocks of the source extent outside of the destination
// extent afterwards.
func (h *Handler) Relocate(dev schema.BlockDevice, from, to, size int) error {
	if from == to || size == 0 {
		return nil
	}

	if err := h.Copy(dev, from, to, size); err != nil {
		return err
	}

	for b := from; b < from+size; b++ {
		if b >= to && b < to+size {
			continue
		}
		if err := dev.ZeroBlock(b); err != nil {
			return fmt.Errorf("(io) failed to zero source block %d: %w", b, err)
		}
	}

	return nil
}

func (h *Handler) transfer(dev schema.BlockDevice, to int, data []byte) error {
	if err := WriteExtent(dev, to, data); err != nil {
		return err
	}

	if !h.verify {
		return nil
	}

	written, err := ReadExtent(dev, to, len(data)/schema.BlockSize)
	if err != nil {
		return err
	}

	srcSum := blake3.Sum256(data)
	dstSum := blake3.Sum256(written)

	if !bytes.Equal(srcSum[:], dstSum[:]) {
		return fmt.Errorf("(io) %w: %s (src) != %s (dst)", ErrHashMismatch,
			hex.EncodeToString(srcSum[:]),
			hex.EncodeToString(dstSum[:]),
		)
	}

	return nil
}

func (h *Handler) restore(dev schema.BlockDevice, from, to int, data []byte) {
	size := len(data) / schema.BlockSize

	if from < to+size && to < from+size {
		if err := WriteExtent(dev, from, data); err != nil {
			slog.Error("Failed to restore source extent after failed relocation",
				"from", from,
				"size", size,
				"err", err,
			)
		}
	}

	for b := to; b < to+size; b++ {
		if b >= from && b < from+size {
			continue
		}
		if err := dev.ZeroBlock(b); err != nil {
			slog.Warn("Failed to zero destination block after failed relocation",
				"block", b,
				"err", err,
			)
		}
	}
}

func checkExtent(start, size int) error {
	if size < 0 || start < schema.FirstDataBlock || start+size > schema.BlockCount {
		return fmt.Errorf("(io) %w: start %d, size %d", ErrExtentRange, start, size)
	}

	return nil
}
