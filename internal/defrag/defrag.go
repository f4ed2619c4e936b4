// Package defrag implements the compaction of a volume: files are packed
// toward the low end of the data blocks in their existing physical order, so
// that all free space ends up as one run at the high end.
package defrag

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/desertwitch/fssim/internal/schema"
)

type ioProvider interface {
	Relocate(dev schema.BlockDevice, from, to, size int) error
}

// Handler is the principal implementation for the defragmentation.
type Handler struct {
	ioHandler ioProvider
}

// NewHandler returns a pointer to a new defrag [Handler].
func NewHandler(ioHandler ioProvider) *Handler {
	return &Handler{
		ioHandler: ioHandler,
	}
}

// Report describes the outcome of a defragmentation.
type Report struct {
	FilesMoved  int
	BlocksMoved int
}

// BytesMoved returns the amount of data that was relocated.
func (r Report) BytesMoved() uint64 {
	return uint64(r.BlocksMoved) * schema.BlockSize //nolint:gosec
}

// Defragment packs all files of sb toward block 1 without gaps, preserving
// their relative order. Every relocation is applied to sb as soon as it has
// completed, so on failure sb describes the blocks as they are on dev.
func (h *Handler) Defragment(dev schema.BlockDevice, sb *schema.Superblock) (Report, error) {
	var report Report

	files := sb.Files()
	sort.SliceStable(files, func(i, j int) bool {
		return sb.Inodes[files[i]].StartBlock < sb.Inodes[files[j]].StartBlock
	})

	cursor := schema.FirstDataBlock

	for _, slot := range files {
		in := &sb.Inodes[slot]
		size := int(in.Size)

		if size == 0 {
			continue
		}

		if from := in.Start(); from != cursor {
			if err := h.ioHandler.Relocate(dev, from, cursor, size); err != nil {
				return report, fmt.Errorf("(defrag) failed to relocate slot %d: %w", slot, err)
			}

			sb.Bitmap.MarkFree(from, size)
			sb.Bitmap.MarkUsed(cursor, size)
			in.StartBlock = uint8(cursor) //nolint:gosec

			report.FilesMoved++
			report.BlocksMoved += size

			slog.Debug("Moved file",
				"slot", slot,
				"name", in.Name.String(),
				"from", from,
				"start", cursor,
				"size", size,
			)
		}

		cursor += size
	}

	return report, nil
}
