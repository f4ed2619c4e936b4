// Package allocation implements the contiguous block allocator of a volume:
// first-fit extent search over the bitmap, reservation and release of
// extents, and resizing of file extents in place or by relocation.
//
// Blocks given up by a release or resize are only freed in the bitmap and
// returned as an [Extent]. Zeroing them on the device is left to the caller,
// once the changed superblock has been written back.
package allocation

import (
	"fmt"
	"log/slog"

	"github.com/desertwitch/fssim/internal/schema"
)

type ioProvider interface {
	Copy(dev schema.BlockDevice, from, to, size int) error
}

// Extent is a run of Size blocks starting at block Start. An Extent with
// Size 0 is empty.
type Extent struct {
	Start int
	Size  int
}

// Handler is the principal implementation for the allocation functions.
type Handler struct {
	ioHandler ioProvider
}

// NewHandler returns a pointer to a new allocation [Handler].
func NewHandler(ioHandler ioProvider) *Handler {
	return &Handler{
		ioHandler: ioHandler,
	}
}

// Stats holds the block usage of a volume.
type Stats struct {
	UsedBlocks int
	FreeBlocks int
}

// UsedBytes returns the capacity of the used data blocks.
func (s Stats) UsedBytes() uint64 {
	return uint64(s.UsedBlocks) * schema.BlockSize //nolint:gosec
}

// FreeBytes returns the capacity of the free data blocks.
func (s Stats) FreeBytes() uint64 {
	return uint64(s.FreeBlocks) * schema.BlockSize //nolint:gosec
}

// BlockStats counts the used and free data blocks of a bitmap.
func BlockStats(bm *schema.Bitmap) Stats {
	used := bm.UsedDataBlocks()

	return Stats{
		UsedBlocks: used,
		FreeBlocks: schema.DataBlockCount - used,
	}
}

// FindExtent returns the lowest data block starting a run of size free
// blocks.
func FindExtent(bm *schema.Bitmap, size int) (int, error) {
	if size < 1 || size > schema.DataBlockCount {
		return 0, fmt.Errorf("(allocation) %w: %d blocks", ErrNoExtent, size)
	}

	run := 0
	for b := schema.FirstDataBlock; b <= schema.LastDataBlock; b++ {
		if bm.IsUsed(b) {
			run = 0

			continue
		}
		run++
		if run == size {
			return b - size + 1, nil
		}
	}

	return 0, fmt.Errorf("(allocation) %w: %d blocks", ErrNoExtent, size)
}

// Allocate reserves the first free extent of size blocks in the bitmap and
// returns its first block.
func (h *Handler) Allocate(sb *schema.Superblock, size int) (int, error) {
	start, err := FindExtent(&sb.Bitmap, size)
	if err != nil {
		return 0, err
	}

	sb.Bitmap.MarkUsed(start, size)

	slog.Debug("Allocated extent",
		"start", start,
		"size", size,
	)

	return start, nil
}

// Release frees the data blocks of the file in slot in the bitmap and returns
// them as vacated. The inode itself is left for the caller to clear.
func (h *Handler) Release(sb *schema.Superblock, slot int) Extent {
	in := &sb.Inodes[slot]
	if !in.IsFile() || in.Size == 0 {
		return Extent{}
	}

	vacated := Extent{Start: in.Start(), Size: int(in.Size)}
	sb.Bitmap.MarkFree(vacated.Start, vacated.Size)

	slog.Debug("Released extent",
		"slot", slot,
		"start", vacated.Start,
		"size", vacated.Size,
	)

	return vacated
}

// Resize changes the size of the file in slot to newSize blocks. Growth
// happens in place when the blocks following the extent are free, otherwise
// the file's data is copied to the first free extent of newSize blocks.
// Shrinking frees the trailing blocks and never moves the file. The blocks no
// longer used by the file are returned as vacated.
func (h *Handler) Resize(dev schema.BlockDevice, sb *schema.Superblock, slot int, newSize int) (Extent, error) {
	in := &sb.Inodes[slot]
	if !in.IsFile() {
		return Extent{}, fmt.Errorf("(allocation) %w: slot %d", ErrNotFile, slot)
	}
	if newSize < 1 || newSize > schema.MaxFileSize {
		return Extent{}, fmt.Errorf("(allocation) %w: %d blocks", ErrCannotExpand, newSize)
	}

	switch size := int(in.Size); {
	case newSize > size:
		return h.grow(dev, sb, slot, newSize)
	case newSize < size:
		return h.shrink(sb, slot, newSize), nil
	default:
		return Extent{}, nil
	}
}

func (h *Handler) grow(dev schema.BlockDevice, sb *schema.Superblock, slot int, newSize int) (Extent, error) {
	in := &sb.Inodes[slot]
	size := int(in.Size)

	if canGrowInPlace(&sb.Bitmap, in.End(), newSize-size) {
		sb.Bitmap.MarkUsed(in.End(), newSize-size)
		in.Size = uint8(newSize) //nolint:gosec

		slog.Debug("Grew extent in place",
			"slot", slot,
			"start", in.Start(),
			"size", newSize,
		)

		return Extent{}, nil
	}

	// The source is still marked used, so the new extent never overlaps it.
	to, err := FindExtent(&sb.Bitmap, newSize)
	if err != nil {
		return Extent{}, fmt.Errorf("(allocation) %w: %w", ErrCannotExpand, err)
	}

	from := in.Start()
	if err := h.ioHandler.Copy(dev, from, to, size); err != nil {
		return Extent{}, fmt.Errorf("(allocation) failed to relocate: %w", err)
	}

	sb.Bitmap.MarkFree(from, size)
	sb.Bitmap.MarkUsed(to, newSize)
	in.StartBlock = uint8(to) //nolint:gosec
	in.Size = uint8(newSize)  //nolint:gosec

	slog.Debug("Grew extent by relocation",
		"slot", slot,
		"from", from,
		"start", to,
		"size", newSize,
	)

	return Extent{Start: from, Size: size}, nil
}

func (h *Handler) shrink(sb *schema.Superblock, slot int, newSize int) Extent {
	in := &sb.Inodes[slot]
	vacated := Extent{Start: in.Start() + newSize, Size: int(in.Size) - newSize}

	sb.Bitmap.MarkFree(vacated.Start, vacated.Size)
	in.Size = uint8(newSize) //nolint:gosec

	slog.Debug("Shrunk extent",
		"slot", slot,
		"start", in.Start(),
		"size", newSize,
	)

	return vacated
}

func canGrowInPlace(bm *schema.Bitmap, from int, count int) bool {
	if from+count > schema.BlockCount {
		return false
	}

	for b := from; b < from+count; b++ {
		if bm.IsUsed(b) {
			return false
		}
	}

	return true
}
