package schema

import (
	"bytes"
	"fmt"
)

// Name is the fixed-width name of an inode. Names shorter than [NameLength]
// are zero-padded; a name using the full width carries no terminator.
// Equality is byte-exact over the full width.
type Name [NameLength]byte

// Reserved names that can never be given to an inode.
const (
	NameSelf   = "."
	NameParent = ".."
)

// ParseName converts a string of up to [NameLength] bytes into a [Name].
func ParseName(s string) (Name, error) {
	var n Name

	if s == "" {
		return n, ErrNameEmpty
	}

	if len(s) > NameLength {
		return n, fmt.Errorf("%w: %q (%d > %d)", ErrNameTooLong, s, len(s), NameLength)
	}

	copy(n[:], s)

	return n, nil
}

// MustParseName is like [ParseName] but panics on error. It is meant for
// constants and tests.
func MustParseName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}

	return n
}

// String returns the printable part of the name, up to the first zero byte.
func (n Name) String() string {
	if i := bytes.IndexByte(n[:], 0); i >= 0 {
		return string(n[:i])
	}

	return string(n[:])
}

// IsReserved reports whether the name is "." or "..".
func (n Name) IsReserved() bool {
	return n == Name{'.'} || n == Name{'.', '.'}
}
