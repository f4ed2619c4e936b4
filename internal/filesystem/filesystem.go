// Package filesystem implements a file system session over one mounted
// volume: mounting with consistency verification, the namespace of files and
// directories, block transfers through the staging buffer, resizing and
// defragmentation.
//
// A [Handler] holds all session state. Every mutating operation works on a
// copy of the active superblock, which is only adopted and written back to
// block 0 once the operation has succeeded. Data blocks given up by an
// operation are zeroed only after that write.
package filesystem

import (
	"fmt"
	"log/slog"

	"github.com/desertwitch/fssim/internal/allocation"
	"github.com/desertwitch/fssim/internal/defrag"
	"github.com/desertwitch/fssim/internal/io"
	"github.com/desertwitch/fssim/internal/schema"
	"github.com/dustin/go-humanize"
)

type storageProvider interface {
	Open(path string) (schema.BlockDevice, error)
}

type allocProvider interface {
	Allocate(sb *schema.Superblock, size int) (int, error)
	Release(sb *schema.Superblock, slot int) allocation.Extent
	Resize(dev schema.BlockDevice, sb *schema.Superblock, slot int, newSize int) (allocation.Extent, error)
}

type defragProvider interface {
	Defragment(dev schema.BlockDevice, sb *schema.Superblock) (defrag.Report, error)
}

// Handler is the principal implementation of a file system session.
type Handler struct {
	storageHandler storageProvider
	allocHandler   allocProvider
	defragHandler  defragProvider

	dev      schema.BlockDevice
	diskName string
	sb       schema.Superblock
	cwd      schema.Location
	buffer   io.Buffer
}

// NewHandler returns a pointer to a new filesystem [Handler] with nothing
// mounted.
func NewHandler(storageHandler storageProvider, allocHandler allocProvider, defragHandler defragProvider) *Handler {
	return &Handler{
		storageHandler: storageHandler,
		allocHandler:   allocHandler,
		defragHandler:  defragHandler,
		cwd:            schema.Root,
	}
}

// Mounted reports whether a volume is mounted.
func (h *Handler) Mounted() bool {
	return h.dev != nil
}

// DiskName returns the name the mounted volume was mounted by.
func (h *Handler) DiskName() string {
	return h.diskName
}

// CurrentDirectory returns the current directory of the session.
func (h *Handler) CurrentDirectory() schema.Location {
	return h.cwd
}

// Superblock returns a copy of the active superblock.
func (h *Handler) Superblock() schema.Superblock {
	return h.sb
}

// Buffer returns a copy of the staging buffer.
func (h *Handler) Buffer() []byte {
	return h.buffer.Bytes()
}

// VolumeStats describes the usage of the mounted volume.
type VolumeStats struct {
	allocation.Stats
	InodesUsed int
	InodesFree int
}

// Stats returns the usage of the mounted volume.
func (h *Handler) Stats() (VolumeStats, error) {
	if !h.Mounted() {
		return VolumeStats{}, errNotMounted()
	}

	used := h.sb.InodesInUse()

	return VolumeStats{
		Stats:      allocation.BlockStats(&h.sb.Bitmap),
		InodesUsed: used,
		InodesFree: schema.InodeCount - used,
	}, nil
}

// Close releases the mounted volume, if any.
func (h *Handler) Close() error {
	if !h.Mounted() {
		return nil
	}

	dev := h.dev
	h.dev = nil
	h.diskName = ""
	h.sb = schema.Superblock{}
	h.cwd = schema.Root
	h.buffer.Clear()

	if err := dev.Close(); err != nil {
		return fmt.Errorf("(filesystem) failed to close volume: %w", err)
	}

	return nil
}

// update runs fn against a copy of the active superblock. The copy is adopted
// and persisted only if fn succeeds.
func (h *Handler) update(fn func(sb *schema.Superblock) error) error {
	candidate := h.sb

	if err := fn(&candidate); err != nil {
		return err
	}

	return h.commit(candidate)
}

// commit adopts sb as the active superblock and writes it to block 0. If the
// write fails, the previous superblock stays active.
func (h *Handler) commit(sb schema.Superblock) error {
	prev := h.sb
	h.sb = sb

	if err := h.persist(); err != nil {
		h.sb = prev

		return err
	}

	return nil
}

func (h *Handler) persist() error {
	var raw [schema.BlockSize]byte
	h.sb.Encode(&raw)

	if err := h.dev.WriteBlock(schema.SuperblockIndex, &raw); err != nil {
		return fmt.Errorf("(filesystem) failed to persist superblock: %w", err)
	}

	if err := h.dev.Sync(); err != nil {
		return fmt.Errorf("(filesystem) failed to persist superblock: %w", err)
	}

	return nil
}

// scrub zeroes the data blocks vacated by a committed operation.
func (h *Handler) scrub(vacated []allocation.Extent) error {
	for _, e := range vacated {
		if e.Size == 0 {
			continue
		}

		if err := io.ZeroExtent(h.dev, e.Start, e.Size); err != nil {
			return fmt.Errorf("(filesystem) failed to zero vacated blocks: %w", err)
		}
	}

	return nil
}

func (h *Handler) logUsage(msg string) {
	stats := allocation.BlockStats(&h.sb.Bitmap)

	slog.Info(msg,
		"disk", h.diskName,
		"used", humanize.IBytes(stats.UsedBytes()),
		"free", humanize.IBytes(stats.FreeBytes()),
		"inodes", h.sb.InodesInUse(),
	)
}
