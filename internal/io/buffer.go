package io

import "github.com/desertwitch/fssim/internal/schema"

// Buffer is the staging buffer of a session. Writes to a volume always take
// the whole buffer, reads replace it.
type Buffer struct {
	data [schema.BlockSize]byte
}

// Set clears the buffer and copies up to one block of content into it. It
// returns the number of bytes copied.
func (b *Buffer) Set(content []byte) int {
	clear(b.data[:])

	return copy(b.data[:], content)
}

// Clear zeroes the buffer.
func (b *Buffer) Clear() {
	clear(b.data[:])
}

// Block returns the buffer contents for reading a block into it or writing
// it out as a block.
func (b *Buffer) Block() *[schema.BlockSize]byte {
	return &b.data
}

// Bytes returns a copy of the buffer contents.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, schema.BlockSize)
	copy(out, b.data[:])

	return out
}
