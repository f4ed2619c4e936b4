package schema

// Bitmap is the free-block bitmap, one bit per block of the volume. Bits are
// stored most significant first: block b is bit 7-(b%8) of byte b/8. A set bit
// marks the block as in use. The bit for the superblock is never consulted.
type Bitmap [BitmapSize]byte

// IsUsed reports whether block b is marked as in use.
func (bm *Bitmap) IsUsed(b int) bool {
	return bm[b/8]&(1<<(7-uint(b%8))) != 0
}

// SetUsed marks block b as in use.
func (bm *Bitmap) SetUsed(b int) {
	bm[b/8] |= 1 << (7 - uint(b%8))
}

// SetFree marks block b as free.
func (bm *Bitmap) SetFree(b int) {
	bm[b/8] &^= 1 << (7 - uint(b%8))
}

// MarkUsed marks size blocks starting at start as in use.
func (bm *Bitmap) MarkUsed(start, size int) {
	for b := start; b < start+size; b++ {
		bm.SetUsed(b)
	}
}

// MarkFree marks size blocks starting at start as free.
func (bm *Bitmap) MarkFree(start, size int) {
	for b := start; b < start+size; b++ {
		bm.SetFree(b)
	}
}

// UsedDataBlocks returns the number of data blocks marked as in use.
func (bm *Bitmap) UsedDataBlocks() int {
	n := 0

	for b := FirstDataBlock; b <= LastDataBlock; b++ {
		if bm.IsUsed(b) {
			n++
		}
	}

	return n
}
