package schema

const inodeTableOffset = BitmapSize

// Superblock is the decoded content of block 0: the free-block bitmap and the
// inode table. It only holds arrays, so assigning a Superblock copies it.
type Superblock struct {
	Bitmap Bitmap
	Inodes [InodeCount]Inode
}

// NewSuperblock returns the superblock of an empty volume. Only the bit of the
// superblock itself is set.
func NewSuperblock() Superblock {
	var sb Superblock

	sb.Bitmap.SetUsed(SuperblockIndex)

	return sb
}

// DecodeSuperblock decodes a packed block 0.
func DecodeSuperblock(b *[BlockSize]byte) Superblock {
	var sb Superblock

	copy(sb.Bitmap[:], b[:BitmapSize])

	for i := range sb.Inodes {
		off := inodeTableOffset + i*InodeSize
		sb.Inodes[i] = decodeInode(b[off : off+InodeSize])
	}

	return sb
}

// Encode packs the superblock into b.
func (sb *Superblock) Encode(b *[BlockSize]byte) {
	copy(b[:BitmapSize], sb.Bitmap[:])

	for i := range sb.Inodes {
		off := inodeTableOffset + i*InodeSize
		sb.Inodes[i].encode(b[off : off+InodeSize])
	}
}

// FreeSlot returns the lowest free inode slot.
func (sb *Superblock) FreeSlot() (int, bool) {
	for i := range sb.Inodes {
		if !sb.Inodes[i].InUse {
			return i, true
		}
	}

	return 0, false
}

// Children returns, in ascending slot order, the in-use inodes whose parent is
// the given location.
func (sb *Superblock) Children(parent Location) []int {
	var children []int

	for i := range sb.Inodes {
		if sb.Inodes[i].InUse && sb.Inodes[i].Parent == parent {
			children = append(children, i)
		}
	}

	return children
}

// Lookup returns the in-use inode with the given parent and name.
func (sb *Superblock) Lookup(parent Location, name Name) (int, bool) {
	for i := range sb.Inodes {
		in := &sb.Inodes[i]
		if in.InUse && in.Parent == parent && in.Name == name {
			return i, true
		}
	}

	return 0, false
}

// Files returns the slots of all in-use file inodes in ascending slot order.
func (sb *Superblock) Files() []int {
	var files []int

	for i := range sb.Inodes {
		if sb.Inodes[i].IsFile() {
			files = append(files, i)
		}
	}

	return files
}

// InodesInUse returns the number of in-use inodes.
func (sb *Superblock) InodesInUse() int {
	n := 0

	for i := range sb.Inodes {
		if sb.Inodes[i].InUse {
			n++
		}
	}

	return n
}
