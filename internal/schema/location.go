package schema

import "fmt"

type locationKind uint8

const (
	kindSlot locationKind = iota
	kindRoot
	kindInvalid
)

// Location is either the volume root or a slot of the inode table. It is used
// both for the parent reference of an inode and for the current directory of
// a session, so no slot index is ever overloaded to mean the root.
//
// The zero value refers to slot 0, which is what an all-zero inode record
// decodes to.
type Location struct {
	kind locationKind
	slot uint8
}

// Root is the location of the volume root. The root has no inode slot.
//
//nolint:gochecknoglobals
var Root = Location{kind: kindRoot}

// Slot returns the location of the inode at slot index i.
func Slot(i int) Location {
	if i < 0 || i >= InodeCount {
		panic(fmt.Sprintf("%v: %d", ErrSlotOutOfRange, i))
	}

	return Location{kind: kindSlot, slot: uint8(i)}
}

// IsRoot reports whether the location is the volume root.
func (l Location) IsRoot() bool {
	return l.kind == kindRoot
}

// IsValid reports whether the location is the root or a slot. Only a
// location decoded from the reserved invalid parent index is not valid.
func (l Location) IsValid() bool {
	return l.kind != kindInvalid
}

// Slot returns the slot index of the location and true, or false for the root
// and invalid locations.
func (l Location) Slot() (int, bool) {
	if l.kind != kindSlot {
		return 0, false
	}

	return int(l.slot), true
}

// String returns a human readable form used in logs.
func (l Location) String() string {
	switch l.kind {
	case kindRoot:
		return "root"
	case kindInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("slot:%d", l.slot)
	}
}

func (l Location) encode() uint8 {
	switch l.kind {
	case kindRoot:
		return rawRootParent
	case kindInvalid:
		return rawInvalidParent
	default:
		return l.slot
	}
}

func decodeLocation(raw uint8) Location {
	switch raw {
	case rawRootParent:
		return Root
	case rawInvalidParent:
		return Location{kind: kindInvalid}
	default:
		return Location{kind: kindSlot, slot: raw}
	}
}
