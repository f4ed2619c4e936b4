// Package validation implements the mount-time consistency checks of a
// candidate superblock. The checks run in a fixed order and the first
// violation aborts the verification.
package validation

import (
	"fmt"
	"log/slog"

	"github.com/desertwitch/fssim/internal/schema"
)

type check struct {
	code int
	fn   func(sb *schema.Superblock) error
}

//nolint:gochecknoglobals
var checks = []check{
	{1, checkFreeInodes},
	{2, checkFileExtents},
	{3, checkDirectoryFields},
	{4, checkParents},
	{5, checkSiblingNames},
	{6, checkBitmap},
}

// Check runs the consistency checks 1 to 6 against sb in order. It returns
// an [*InconsistencyError] carrying the code of the first violated check.
func Check(sb *schema.Superblock) error {
	for _, c := range checks {
		if err := c.fn(sb); err != nil {
			slog.Debug("Consistency check failed",
				"code", c.code,
				"err", err,
			)

			return &InconsistencyError{Code: c.code, Err: err}
		}
	}

	return nil
}

// checkFreeInodes verifies that free inodes are entirely zero. An in-use
// inode always has its used bit set, so it is never all-zero; its name may be.
func checkFreeInodes(sb *schema.Superblock) error {
	for i, in := range sb.Inodes {
		if !in.InUse && !in.IsZero() {
			return fmt.Errorf("%w: slot %d", ErrFreeNotZero, i)
		}
	}

	return nil
}

// checkFileExtents verifies that in-use files start on a data block and end
// within the volume.
func checkFileExtents(sb *schema.Superblock) error {
	for i, in := range sb.Inodes {
		if !in.IsFile() {
			continue
		}
		if in.Start() < schema.FirstDataBlock || in.Start() > schema.LastDataBlock {
			return fmt.Errorf("%w: slot %d starts at %d", ErrFileExtent, i, in.Start())
		}
		if in.End()-1 > schema.LastDataBlock {
			return fmt.Errorf("%w: slot %d ends at %d", ErrFileExtent, i, in.End()-1)
		}
	}

	return nil
}

// checkDirectoryFields verifies that directories have neither a size nor a
// start block.
func checkDirectoryFields(sb *schema.Superblock) error {
	for i, in := range sb.Inodes {
		if in.IsDir && (in.StartBlock != 0 || in.Size != 0) {
			return fmt.Errorf("%w: slot %d", ErrDirectoryFields, i)
		}
	}

	return nil
}

// checkParents verifies that every in-use inode is parented by the root or an
// in-use directory, and that following the parents always reaches the root.
func checkParents(sb *schema.Superblock) error {
	for i, in := range sb.Inodes {
		if !in.InUse {
			continue
		}
		if !in.Parent.IsValid() {
			return fmt.Errorf("%w: slot %d", ErrInvalidParent, i)
		}
		if p, ok := in.Parent.Slot(); ok && !sb.Inodes[p].IsDirectory() {
			return fmt.Errorf("%w: slot %d has parent %d", ErrParentNotDirectory, i, p)
		}
	}

	for i, in := range sb.Inodes {
		if !in.IsDirectory() {
			continue
		}
		if !reachesRoot(sb, i) {
			return fmt.Errorf("%w: slot %d", ErrParentCycle, i)
		}
	}

	return nil
}

func reachesRoot(sb *schema.Superblock, slot int) bool {
	loc := schema.Slot(slot)

	for range schema.InodeCount + 1 {
		p, ok := loc.Slot()
		if !ok {
			return loc.IsRoot()
		}
		loc = sb.Inodes[p].Parent
	}

	return false
}

// checkSiblingNames verifies that names are unique among the in-use children
// of every directory.
func checkSiblingNames(sb *schema.Superblock) error {
	type key struct {
		parent schema.Location
		name   schema.Name
	}

	seen := make(map[key]int)

	for i, in := range sb.Inodes {
		if !in.InUse {
			continue
		}
		k := key{in.Parent, in.Name}
		if first, ok := seen[k]; ok {
			return fmt.Errorf("%w: slots %d and %d share %q", ErrDuplicateName, first, i, in.Name.String())
		}
		seen[k] = i
	}

	return nil
}

// checkBitmap verifies that a data block is marked used exactly when one
// in-use file covers it.
func checkBitmap(sb *schema.Superblock) error {
	var owners [schema.BlockCount]int

	for _, in := range sb.Inodes {
		if !in.IsFile() {
			continue
		}
		for b := in.Start(); b < in.End(); b++ {
			owners[b]++
		}
	}

	for b := schema.FirstDataBlock; b <= schema.LastDataBlock; b++ {
		used := sb.Bitmap.IsUsed(b)
		if used && owners[b] != 1 {
			return fmt.Errorf("%w: block %d used with %d owners", ErrBitmapMismatch, b, owners[b])
		}
		if !used && owners[b] != 0 {
			return fmt.Errorf("%w: block %d free with %d owners", ErrBitmapMismatch, b, owners[b])
		}
	}

	return nil
}
