package schema

// Inode is the decoded form of one inode record. The packed representation
// (flag bits sharing bytes with the size and the parent index) only exists at
// the [Superblock] codec boundary.
type Inode struct {
	Name       Name
	InUse      bool
	Size       uint8
	StartBlock uint8
	IsDir      bool
	Parent     Location
}

// IsZero reports whether the record is entirely zero, which is the only
// valid state of a free inode.
func (in Inode) IsZero() bool {
	return in == Inode{}
}

// IsFile reports whether the inode is an in-use regular file.
func (in Inode) IsFile() bool {
	return in.InUse && !in.IsDir
}

// IsDirectory reports whether the inode is an in-use directory.
func (in Inode) IsDirectory() bool {
	return in.InUse && in.IsDir
}

// Start returns the first block of the extent of a file.
func (in Inode) Start() int {
	return int(in.StartBlock)
}

// End returns the block just past the extent of a file.
func (in Inode) End() int {
	return int(in.StartBlock) + int(in.Size)
}

// Covers reports whether block b lies inside the extent of a file.
func (in Inode) Covers(b int) bool {
	return in.IsFile() && b >= in.Start() && b < in.End()
}

func (in Inode) encode(b []byte) {
	copy(b[0:NameLength], in.Name[:])

	usedSize := in.Size & maskLow
	if in.InUse {
		usedSize |= flagHigh
	}

	dirParent := in.Parent.encode() & maskLow
	if in.IsDir {
		dirParent |= flagHigh
	}

	b[5] = usedSize
	b[6] = in.StartBlock
	b[7] = dirParent
}

func decodeInode(b []byte) Inode {
	var in Inode

	copy(in.Name[:], b[0:NameLength])
	in.InUse = b[5]&flagHigh != 0
	in.Size = b[5] & maskLow
	in.StartBlock = b[6]
	in.IsDir = b[7]&flagHigh != 0
	in.Parent = decodeLocation(b[7] & maskLow)

	return in
}
