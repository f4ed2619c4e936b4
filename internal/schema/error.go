package schema

import "errors"

var (
	// ErrNameEmpty is returned when a [Name] would be made from an empty
	// string.
	ErrNameEmpty = errors.New("name is empty")

	// ErrNameTooLong is returned when a [Name] would be made from a string
	// longer than [NameLength] bytes.
	ErrNameTooLong = errors.New("name exceeds maximum length")

	// ErrSlotOutOfRange is returned when a slot index is outside of the
	// inode table.
	ErrSlotOutOfRange = errors.New("slot index out of range")
)
