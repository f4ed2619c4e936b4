package filesystem

import (
	"errors"
	"log/slog"

	"github.com/desertwitch/fssim/internal/schema"
	"github.com/desertwitch/fssim/internal/validation"
)

// Mount opens the volume image disk and adopts it as the mounted volume if
// its superblock passes all consistency checks. A rejected volume leaves the
// previously mounted volume, its staging buffer and current directory as
// they were. On success the previously mounted volume is closed, the staging
// buffer is cleared and the current directory is the root.
func (h *Handler) Mount(disk string) error {
	dev, err := h.storageHandler.Open(disk)
	if err != nil {
		slog.Info("Rejected volume: failed to open", "disk", disk, "err", err)

		return errDiskNotFound(disk, err)
	}

	var raw [schema.BlockSize]byte
	if err := dev.ReadBlock(schema.SuperblockIndex, &raw); err != nil {
		dev.Close()
		slog.Info("Rejected volume: failed to read superblock", "disk", disk, "err", err)

		return errDiskNotFound(disk, err)
	}

	candidate := schema.DecodeSuperblock(&raw)

	if err := validation.Check(&candidate); err != nil {
		dev.Close()
		slog.Info("Rejected volume: inconsistent", "disk", disk, "err", err)

		var inconsistent *validation.InconsistencyError
		if errors.As(err, &inconsistent) {
			return errInconsistent(disk, inconsistent.Code, err)
		}

		return errInconsistent(disk, 0, err)
	}

	prev := h.dev

	h.dev = dev
	h.diskName = disk
	h.sb = candidate
	h.cwd = schema.Root
	h.buffer.Clear()

	if prev != nil {
		if err := prev.Close(); err != nil {
			slog.Warn("Failed to close previously mounted volume", "disk", prev.Path(), "err", err)
		}
	}

	h.logUsage("Mounted volume")

	return nil
}
