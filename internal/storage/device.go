package storage

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/desertwitch/fssim/internal/schema"
	"golang.org/x/sys/unix"
)

// Device is an open volume image.
type Device struct {
	path        string
	file        *os.File
	info        os.FileInfo
	fd          int
	locked      bool
	unixHandler unixProvider
	syncWrites  bool
	release     func(*Device)
}

// Path returns the path the image was opened from.
func (d *Device) Path() string {
	return d.path
}

// ReadBlock reads block index into p. Parts of the block beyond the end of a
// short image read as zeroes.
func (d *Device) ReadBlock(index int, p *[schema.BlockSize]byte) error {
	if err := checkIndex(index); err != nil {
		return err
	}

	clear(p[:])

	off := int64(index) * schema.BlockSize
	read := 0

	for read < schema.BlockSize {
		n, err := d.unixHandler.Pread(d.fd, p[read:], off+int64(read))
		if err != nil {
			return fmt.Errorf("(storage) failed to read block %d: %w", index, err)
		}
		if n == 0 {
			break
		}
		read += n
	}

	return nil
}

// WriteBlock writes p to block index.
func (d *Device) WriteBlock(index int, p *[schema.BlockSize]byte) error {
	if err := checkIndex(index); err != nil {
		return err
	}

	off := int64(index) * schema.BlockSize
	written := 0

	for written < schema.BlockSize {
		n, err := d.unixHandler.Pwrite(d.fd, p[written:], off+int64(written))
		if err != nil {
			return fmt.Errorf("(storage) failed to write block %d: %w", index, err)
		}
		if n == 0 {
			return fmt.Errorf("(storage) %w: block %d", ErrShortWrite, index)
		}
		written += n
	}

	return nil
}

// ZeroBlock overwrites block index with zeroes.
func (d *Device) ZeroBlock(index int) error {
	var zero [schema.BlockSize]byte

	return d.WriteBlock(index, &zero)
}

// Sync flushes written blocks to stable storage, if the [Handler] was
// configured to do so.
func (d *Device) Sync() error {
	if !d.syncWrites {
		return nil
	}

	if err := d.unixHandler.Fsync(d.fd); err != nil {
		return fmt.Errorf("(storage) failed to sync: %w", err)
	}

	return nil
}

// Close releases the lock and closes the image.
func (d *Device) Close() error {
	if d.release != nil {
		d.release(d)
	}

	if d.locked {
		if err := d.unixHandler.Flock(d.fd, unix.LOCK_UN); err != nil {
			slog.Warn("Failed to unlock volume image", "disk", d.path, "err", err)
		}
	}

	if err := d.file.Close(); err != nil {
		return fmt.Errorf("(storage) failed to close: %w", err)
	}

	slog.Debug("Closed volume image", "disk", d.path)

	return nil
}

func checkIndex(index int) error {
	if index < 0 || index >= schema.BlockCount {
		return fmt.Errorf("(storage) %w: %d", ErrBlockOutOfRange, index)
	}

	return nil
}
