package filesystem

import (
	"fmt"
	"io"

	"github.com/desertwitch/fssim/internal/schema"
)

// Entry is one row of a directory listing. For a directory, Count is the
// number of its entries including "." and "..". For a file, Count is its
// size in blocks.
type Entry struct {
	Name  string
	IsDir bool
	Count int
}

// List returns the listing of the current directory: "." and ".." first,
// then the entries of the directory in inode order.
func (h *Handler) List() ([]Entry, error) {
	if !h.Mounted() {
		return nil, errNotMounted()
	}

	children := h.sb.Children(h.cwd)
	self := len(children) + 2 //nolint:mnd

	parent := self
	if slot, ok := h.cwd.Slot(); ok {
		parent = h.entryCount(h.sb.Inodes[slot].Parent)
	}

	entries := make([]Entry, 0, len(children)+2) //nolint:mnd
	entries = append(entries,
		Entry{Name: schema.NameSelf, IsDir: true, Count: self},
		Entry{Name: schema.NameParent, IsDir: true, Count: parent},
	)

	for _, slot := range children {
		in := h.sb.Inodes[slot]

		if in.IsDir {
			entries = append(entries, Entry{
				Name:  in.Name.String(),
				IsDir: true,
				Count: h.entryCount(schema.Slot(slot)),
			})

			continue
		}

		entries = append(entries, Entry{
			Name:  in.Name.String(),
			Count: int(in.Size),
		})
	}

	return entries, nil
}

func (h *Handler) entryCount(loc schema.Location) int {
	return len(h.sb.Children(loc)) + 2 //nolint:mnd
}

// WriteListing writes entries to w, one per line.
func WriteListing(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		var err error

		if e.IsDir {
			_, err = fmt.Fprintf(w, "%-5s %3d\n", e.Name, e.Count)
		} else {
			_, err = fmt.Fprintf(w, "%-5s %3d KB\n", e.Name, e.Count)
		}

		if err != nil {
			return fmt.Errorf("(filesystem) failed to write listing: %w", err)
		}
	}

	return nil
}
