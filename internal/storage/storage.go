// Package storage implements the block store of a volume: fixed-size block
// reads and writes against a backing image file, with an exclusive advisory
// lock held for as long as the image is open.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/desertwitch/fssim/internal/schema"
	"golang.org/x/sys/unix"
)

type osProvider interface {
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
}

type unixProvider interface {
	Flock(fd int, how int) error
	Fsync(fd int) error
	Ftruncate(fd int, length int64) error
	Pread(fd int, p []byte, offset int64) (int, error)
	Pwrite(fd int, p []byte, offset int64) (int, error)
}

// Handler is the principal implementation for opening and creating volume
// images. It keeps track of the devices it has open.
type Handler struct {
	sync.Mutex
	osHandler   osProvider
	unixHandler unixProvider
	syncWrites  bool
	open        map[*Device]struct{}
}

// NewHandler returns a pointer to a new storage [Handler]. With syncWrites
// set, every [Device.Sync] call is forwarded to the operating system.
func NewHandler(osHandler osProvider, unixHandler unixProvider, syncWrites bool) *Handler {
	return &Handler{
		osHandler:   osHandler,
		unixHandler: unixHandler,
		syncWrites:  syncWrites,
		open:        make(map[*Device]struct{}),
	}
}

// Open opens the image at path for reading and writing and locks it. The
// returned [Device] needs to be closed by the caller.
//
// An image that is locked through another [Device] of the same [Handler] is
// opened without the lock, as happens on a remount of the active volume. An
// image locked by anyone else is reported as [ErrLocked].
func (h *Handler) Open(path string) (*Device, error) {
	f, err := h.osHandler.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("(storage) failed to open: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()

		return nil, fmt.Errorf("(storage) failed to stat: %w", err)
	}

	fd := int(f.Fd())
	locked := true

	if err := h.unixHandler.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if !errors.Is(err, unix.EWOULDBLOCK) {
			f.Close()

			return nil, fmt.Errorf("(storage) failed to lock: %w", err)
		}

		if !h.isOpen(info) {
			f.Close()

			return nil, fmt.Errorf("(storage) %w: %s", ErrLocked, path)
		}

		slog.Info("Volume image is already open, continuing without lock", "disk", path)
		locked = false
	}

	dev := &Device{
		path:        path,
		file:        f,
		info:        info,
		fd:          fd,
		locked:      locked,
		unixHandler: h.unixHandler,
		syncWrites:  h.syncWrites,
		release:     h.release,
	}

	h.Lock()
	h.open[dev] = struct{}{}
	h.Unlock()

	slog.Debug("Opened volume image", "disk", path, "locked", locked)

	return dev, nil
}

// isOpen reports whether the file described by info is open through a
// [Device] of the [Handler].
func (h *Handler) isOpen(info os.FileInfo) bool {
	h.Lock()
	defer h.Unlock()

	for dev := range h.open {
		if os.SameFile(dev.info, info) {
			return true
		}
	}

	return false
}

func (h *Handler) release(dev *Device) {
	h.Lock()
	defer h.Unlock()

	delete(h.open, dev)
}

// Create creates a new, empty and consistent volume image at path. An
// existing file is never overwritten.
func (h *Handler) Create(path string) error {
	f, err := h.osHandler.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644) //nolint:mnd
	if err != nil {
		return fmt.Errorf("(storage) failed to create: %w", err)
	}
	defer f.Close()

	fd := int(f.Fd())

	if err := h.unixHandler.Ftruncate(fd, schema.VolumeSize); err != nil {
		return fmt.Errorf("(storage) failed to size image: %w", err)
	}

	var raw [schema.BlockSize]byte
	sb := schema.NewSuperblock()
	sb.Encode(&raw)

	dev := &Device{path: path, file: f, fd: fd, unixHandler: h.unixHandler, syncWrites: true}

	if err := dev.WriteBlock(schema.SuperblockIndex, &raw); err != nil {
		return fmt.Errorf("(storage) failed to write superblock: %w", err)
	}

	if err := dev.Sync(); err != nil {
		return fmt.Errorf("(storage) %w", err)
	}

	slog.Info("Created volume image", "disk", path, "size", schema.VolumeSize)

	return nil
}
