package schema

// BlockDevice describes methods a block-addressed backing store of a volume
// needs to have.
type BlockDevice interface {
	Path() string
	ReadBlock(index int, p *[BlockSize]byte) error
	WriteBlock(index int, p *[BlockSize]byte) error
	ZeroBlock(index int) error
	Sync() error
	Close() error
}
