// Package schema provides the principal schematics for all other packages. It
// defines the volume geometry, the in-memory model of the superblock (inodes,
// names, parent locations and the free-block bitmap) and the codec between
// that model and the packed on-disk representation of block 0. It also
// provides implementations for handling the (Unix-based) operating system
// syscalls needed by the block store.
package schema
