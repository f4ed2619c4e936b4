package filesystem

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/desertwitch/fssim/internal/allocation"
	"github.com/desertwitch/fssim/internal/defrag"
	"github.com/desertwitch/fssim/internal/schema"
	"github.com/dustin/go-humanize"
)

// SetBuffer clears the staging buffer and copies up to one block of content
// into it.
func (h *Handler) SetBuffer(content []byte) error {
	if !h.Mounted() {
		return errNotMounted()
	}

	n := h.buffer.Set(content)

	slog.Debug("Set staging buffer", "bytes", n)

	return nil
}

// Read copies block index of the file called name into the staging buffer.
func (h *Handler) Read(name string, index int) error {
	if !h.Mounted() {
		return errNotMounted()
	}

	slot, ok := h.lookupFile(name)
	if !ok {
		return errFileNotExist(name)
	}

	in := h.sb.Inodes[slot]
	if index < 0 || index >= int(in.Size) {
		return errBlockRange(name, index)
	}

	if err := h.dev.ReadBlock(in.Start()+index, h.buffer.Block()); err != nil {
		return fmt.Errorf("(filesystem) failed to read %s: %w", name, err)
	}

	return nil
}

// Write writes the staging buffer to block index of the file called name.
// The superblock is written back afterwards.
func (h *Handler) Write(name string, index int) error {
	if !h.Mounted() {
		return errNotMounted()
	}

	slot, ok := h.lookupFile(name)
	if !ok {
		return errFileNotExist(name)
	}

	in := h.sb.Inodes[slot]
	if index < 0 || index >= int(in.Size) {
		return errBlockRange(name, index)
	}

	if err := h.dev.WriteBlock(in.Start()+index, h.buffer.Block()); err != nil {
		return fmt.Errorf("(filesystem) failed to write %s: %w", name, err)
	}

	return h.persist()
}

// Resize changes the size of the file called name to newSize blocks. See
// [allocation.Handler.Resize] for the placement rules.
func (h *Handler) Resize(name string, newSize int) error {
	if !h.Mounted() {
		return errNotMounted()
	}

	slot, ok := h.lookupFile(name)
	if !ok {
		return errFileNotExist(name)
	}

	if newSize < 1 {
		return fmt.Errorf("(filesystem) %w: size %d", ErrInvalidArgument, newSize)
	}

	var vacated allocation.Extent

	err := h.update(func(sb *schema.Superblock) error {
		var err error

		vacated, err = h.allocHandler.Resize(h.dev, sb, slot, newSize)
		if err != nil {
			if errors.Is(err, allocation.ErrCannotExpand) {
				return errCannotExpand(name, newSize, err)
			}

			return fmt.Errorf("(filesystem) failed to resize %s: %w", name, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return h.scrub([]allocation.Extent{vacated})
}

// Defragment packs all files toward the start of the volume, preserving
// their order. If a relocation fails, the moves completed until then are
// kept, since their data has already been moved on the volume.
func (h *Handler) Defragment() (defrag.Report, error) {
	if !h.Mounted() {
		return defrag.Report{}, errNotMounted()
	}

	candidate := h.sb

	report, err := h.defragHandler.Defragment(h.dev, &candidate)

	h.sb = candidate
	if perr := h.persist(); perr != nil {
		return report, errors.Join(err, perr)
	}

	if err != nil {
		return report, fmt.Errorf("(filesystem) failed to defragment: %w", err)
	}

	slog.Info("Defragmented volume",
		"disk", h.diskName,
		"files", report.FilesMoved,
		"moved", humanize.IBytes(report.BytesMoved()),
	)

	return report, nil
}
