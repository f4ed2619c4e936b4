package filesystem

import (
	"fmt"
	"log/slog"

	"github.com/desertwitch/fssim/internal/allocation"
	"github.com/desertwitch/fssim/internal/schema"
)

// lookup returns the in-use inode called name in the current directory.
func (h *Handler) lookup(name string) (int, bool) {
	n, err := schema.ParseName(name)
	if err != nil {
		return 0, false
	}

	return h.sb.Lookup(h.cwd, n)
}

// lookupFile is like lookup, but only matches files.
func (h *Handler) lookupFile(name string) (int, bool) {
	slot, ok := h.lookup(name)
	if !ok || !h.sb.Inodes[slot].IsFile() {
		return 0, false
	}

	return slot, true
}

// Create creates a file of size blocks in the current directory, or a
// directory if size is 0. Files are placed on the first run of free blocks
// large enough, and take the lowest free inode.
func (h *Handler) Create(name string, size int) error {
	if !h.Mounted() {
		return errNotMounted()
	}

	n, err := schema.ParseName(name)
	if err != nil {
		return fmt.Errorf("(filesystem) %w: %w", ErrInvalidArgument, err)
	}
	if size < 0 || size > schema.MaxFileSize {
		return fmt.Errorf("(filesystem) %w: size %d", ErrInvalidArgument, size)
	}

	if n.IsReserved() {
		return errExists(name)
	}
	if _, ok := h.sb.Lookup(h.cwd, n); ok {
		return errExists(name)
	}

	return h.update(func(sb *schema.Superblock) error {
		slot, ok := sb.FreeSlot()
		if !ok {
			return errSuperblockFull(h.diskName, name)
		}

		in := schema.Inode{
			Name:   n,
			InUse:  true,
			IsDir:  size == 0,
			Parent: h.cwd,
		}

		if size > 0 {
			start, err := h.allocHandler.Allocate(sb, size)
			if err != nil {
				return errCannotAllocate(size, h.diskName, err)
			}
			in.Size = uint8(size)        //nolint:gosec
			in.StartBlock = uint8(start) //nolint:gosec
		}

		sb.Inodes[slot] = in

		slog.Debug("Created inode",
			"name", name,
			"slot", slot,
			"dir", in.IsDir,
			"start", in.StartBlock,
			"size", in.Size,
			"parent", h.cwd,
		)

		return nil
	})
}

// Delete deletes the file or directory called name in the current directory.
// A directory is deleted with everything below it, descendants first. Data
// blocks of deleted files are zeroed and freed.
func (h *Handler) Delete(name string) error {
	if !h.Mounted() {
		return errNotMounted()
	}

	target, ok := h.lookup(name)
	if !ok {
		return errNotExist(name)
	}

	var vacated []allocation.Extent

	err := h.update(func(sb *schema.Superblock) error {
		order := subtree(sb, target)

		for i := len(order) - 1; i >= 0; i-- {
			slot := order[i]

			vacated = append(vacated, h.allocHandler.Release(sb, slot))

			slog.Debug("Deleted inode",
				"name", sb.Inodes[slot].Name.String(),
				"slot", slot,
			)

			sb.Inodes[slot] = schema.Inode{}
		}

		return nil
	})
	if err != nil {
		return err
	}

	return h.scrub(vacated)
}

// subtree returns root and all inodes below it, every directory before its
// children.
func subtree(sb *schema.Superblock, root int) []int {
	var order []int

	visited := make(map[int]struct{}, schema.InodeCount)
	stack := []int{root}

	for len(stack) > 0 {
		slot := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[slot]; ok {
			continue
		}
		visited[slot] = struct{}{}
		order = append(order, slot)

		if sb.Inodes[slot].IsDirectory() {
			stack = append(stack, sb.Children(schema.Slot(slot))...)
		}
	}

	return order
}

// ChangeDirectory changes the current directory to the directory called name
// in the current directory. "." stays, ".." moves to the parent, which at the
// root is the root itself.
func (h *Handler) ChangeDirectory(name string) error {
	if !h.Mounted() {
		return errNotMounted()
	}

	switch name {
	case schema.NameSelf:
		return nil

	case schema.NameParent:
		if slot, ok := h.cwd.Slot(); ok {
			h.cwd = h.sb.Inodes[slot].Parent
		}

		return nil
	}

	slot, ok := h.lookup(name)
	if !ok || !h.sb.Inodes[slot].IsDirectory() {
		return errDirNotExist(name)
	}

	h.cwd = schema.Slot(slot)

	return nil
}
