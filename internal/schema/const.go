package schema

const (
	// BlockSize is the size of every block of a volume in bytes.
	BlockSize = 1024

	// BlockCount is the number of blocks of a volume, including the
	// superblock.
	BlockCount = 128

	// VolumeSize is the size of a volume image in bytes.
	VolumeSize = BlockSize * BlockCount

	// SuperblockIndex is the block holding the [Superblock].
	SuperblockIndex = 0

	// FirstDataBlock is the lowest block that can hold file data.
	FirstDataBlock = 1

	// LastDataBlock is the highest block that can hold file data.
	LastDataBlock = BlockCount - 1

	// DataBlockCount is the number of blocks that can hold file data.
	DataBlockCount = LastDataBlock - FirstDataBlock + 1

	// InodeCount is the number of inode slots in the [Superblock].
	InodeCount = 126

	// NameLength is the fixed width of an inode [Name].
	NameLength = 5

	// MaxFileSize is the largest size (in blocks) an inode can record.
	MaxFileSize = 127

	// BitmapSize is the size of the packed free-block bitmap in bytes.
	BitmapSize = BlockCount / 8

	// InodeSize is the size of one packed inode record in bytes.
	InodeSize = 8
)

const (
	rawRootParent    = 127
	rawInvalidParent = 126

	flagHigh = 0x80
	maskLow  = 0x7f
)
