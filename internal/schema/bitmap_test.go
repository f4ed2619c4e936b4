package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBitmap_BitOrder tests that block bits are stored most significant
// first.
func TestBitmap_BitOrder(t *testing.T) {
	t.Parallel()

	var bm Bitmap

	bm.SetUsed(0)
	bm.SetUsed(9)
	bm.SetUsed(127)

	assert.Equal(t, byte(0x80), bm[0])
	assert.Equal(t, byte(0x40), bm[1])
	assert.Equal(t, byte(0x01), bm[15])

	assert.True(t, bm.IsUsed(9))
	assert.False(t, bm.IsUsed(8))

	bm.SetFree(9)
	assert.False(t, bm.IsUsed(9))
	assert.Equal(t, byte(0x00), bm[1])
}

// TestBitmap_Ranges tests range marking and data block accounting.
func TestBitmap_Ranges(t *testing.T) {
	t.Parallel()

	bm := NewSuperblock().Bitmap

	assert.Equal(t, 0, bm.UsedDataBlocks(), "superblock bit must not count as data")

	bm.MarkUsed(5, 10)
	assert.Equal(t, 10, bm.UsedDataBlocks())
	assert.True(t, bm.IsUsed(5))
	assert.True(t, bm.IsUsed(14))
	assert.False(t, bm.IsUsed(15))

	bm.MarkFree(10, 5)
	assert.Equal(t, 5, bm.UsedDataBlocks())
	assert.False(t, bm.IsUsed(10))
}
