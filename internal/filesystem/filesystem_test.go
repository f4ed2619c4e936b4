package filesystem

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/desertwitch/fssim/internal/schema"
	"github.com/desertwitch/fssim/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestNotMounted tests that every operation fails without a mounted volume.
func TestNotMounted(t *testing.T) {
	t.Parallel()

	h := newEngine(&mockStorage{})

	_, listErr := h.List()
	_, defragErr := h.Defragment()
	_, statsErr := h.Stats()

	errs := []error{
		h.Create("a", 1),
		h.Delete("a"),
		h.ChangeDirectory("a"),
		h.Read("a", 0),
		h.Write("a", 0),
		h.SetBuffer([]byte("x")),
		h.Resize("a", 2),
		listErr,
		defragErr,
		statsErr,
	}

	for _, err := range errs {
		require.ErrorIs(t, err, ErrNotMounted)
		assert.Equal(t, "Error: No file system is mounted", err.Error())
	}

	require.NoError(t, h.Close())
}

// TestMount_Success tests mounting a fresh volume.
func TestMount_Success(t *testing.T) {
	t.Parallel()

	h, disk := newTestHandler(t)

	assert.True(t, h.Mounted())
	assert.Equal(t, disk, h.DiskName())
	assert.Equal(t, schema.Root, h.CurrentDirectory())
	assert.Equal(t, make([]byte, schema.BlockSize), h.Buffer())

	stats, err := h.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.UsedBlocks)
	assert.Equal(t, 127, stats.FreeBlocks)
	assert.Equal(t, 0, stats.InodesUsed)
	assert.Equal(t, 126, stats.InodesFree)

	assert.Equal(t, ".       2\n..      2\n", listing(t, h))
	requireConsistent(t, h, disk)
}

// TestMount_Fail_NotFound tests that a missing image is reported and the
// active volume stays mounted.
func TestMount_Fail_NotFound(t *testing.T) {
	t.Parallel()

	h, disk := newTestHandler(t)
	require.NoError(t, h.Create("a", 1))

	missing := filepath.Join(t.TempDir(), "nope")
	err := h.Mount(missing)
	require.ErrorIs(t, err, ErrDiskNotFound)
	assert.Equal(t, "Error: Cannot find disk "+missing, err.Error())

	assert.Equal(t, disk, h.DiskName())
	_, ok := h.lookup("a")
	assert.True(t, ok)
}

// TestMount_Fail_LockedElsewhere tests that an image mounted by another
// session cannot be mounted, leaving the active volume untouched.
func TestMount_Fail_LockedElsewhere(t *testing.T) {
	t.Parallel()

	owner, disk := newTestHandler(t)
	require.NoError(t, owner.Create("a", 1))

	h, own := newTestHandler(t)

	err := h.Mount(disk)
	require.ErrorIs(t, err, ErrDiskNotFound)
	assert.Equal(t, "Error: Cannot find disk "+disk, err.Error())
	assert.Equal(t, own, h.DiskName())

	require.NoError(t, owner.Close())
	require.NoError(t, h.Mount(disk), "the image should be free once unmounted")

	_, ok := h.lookup("a")
	assert.True(t, ok)
}

// TestMount_Fail_Inconsistent tests that volumes violating each check are
// rejected with the matching code, leaving the active volume untouched.
func TestMount_Fail_Inconsistent(t *testing.T) {
	t.Parallel()

	file := func(name string, start, size int, parent schema.Location) schema.Inode {
		return schema.Inode{Name: schema.MustParseName(name), InUse: true, Size: uint8(size), StartBlock: uint8(start), Parent: parent}
	}
	dir := func(name string, parent schema.Location) schema.Inode {
		return schema.Inode{Name: schema.MustParseName(name), InUse: true, IsDir: true, Parent: parent}
	}

	tests := []struct {
		name     string
		build    func(sb *schema.Superblock)
		wantCode int
	}{
		{"free inode not zero", func(sb *schema.Superblock) {
			sb.Inodes[3].StartBlock = 9
		}, 1},
		{"file outside volume", func(sb *schema.Superblock) {
			sb.Inodes[0] = file("f", 0, 2, schema.Root)
		}, 2},
		{"directory with size", func(sb *schema.Superblock) {
			sb.Inodes[0] = dir("d", schema.Root)
			sb.Inodes[0].Size = 3
		}, 3},
		{"parent is a file", func(sb *schema.Superblock) {
			sb.Inodes[0] = file("f", 1, 1, schema.Root)
			sb.Inodes[1] = file("g", 2, 1, schema.Slot(0))
			sb.Bitmap.MarkUsed(1, 2)
		}, 4},
		{"duplicate names", func(sb *schema.Superblock) {
			sb.Inodes[0] = dir("x", schema.Root)
			sb.Inodes[1] = file("x", 1, 1, schema.Root)
			sb.Bitmap.MarkUsed(1, 1)
		}, 5},
		{"bitmap mismatch", func(sb *schema.Superblock) {
			sb.Inodes[0] = file("f", 1, 2, schema.Root)
			sb.Bitmap.MarkUsed(1, 1)
		}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, disk := newTestHandler(t)
			require.NoError(t, h.Create("keep", 2))
			require.NoError(t, h.Create("sub", 0))
			require.NoError(t, h.ChangeDirectory("sub"))
			require.NoError(t, h.SetBuffer([]byte("staged")))

			before := h.Superblock()

			bad := newImage(t, t.TempDir(), "bad")
			sb := schema.NewSuperblock()
			tt.build(&sb)
			writeSuperblock(t, bad, sb)

			err := h.Mount(bad)
			require.ErrorIs(t, err, ErrInconsistent)
			assert.Equal(t,
				fmt.Sprintf("Error: File system in %s is inconsistent (error code: %d)", bad, tt.wantCode),
				err.Error(),
			)

			var inconsistent *validation.InconsistencyError
			require.ErrorAs(t, err, &inconsistent)
			assert.Equal(t, tt.wantCode, inconsistent.Code)

			assert.Equal(t, disk, h.DiskName())
			assert.Equal(t, before, h.Superblock())
			assert.Equal(t, schema.Slot(1), h.CurrentDirectory())
			assert.Equal(t, []byte("staged"), h.Buffer()[:6])

			require.NoError(t, h.Create("more", 1), "previous volume should remain usable")
			requireConsistent(t, h, disk)
		})
	}
}

// TestMount_Remount tests that mounting again resets the session state.
func TestMount_Remount(t *testing.T) {
	t.Parallel()

	h, disk := newTestHandler(t)
	require.NoError(t, h.Create("d", 0))
	require.NoError(t, h.ChangeDirectory("d"))
	require.NoError(t, h.SetBuffer([]byte("abc")))

	other := newImage(t, t.TempDir(), "disk1")
	require.NoError(t, h.Mount(other))

	assert.Equal(t, other, h.DiskName())
	assert.Equal(t, schema.Root, h.CurrentDirectory())
	assert.Equal(t, make([]byte, schema.BlockSize), h.Buffer())
	assert.Equal(t, schema.NewSuperblock(), h.Superblock())

	require.NoError(t, h.Mount(disk))
	_, ok := h.lookup("d")
	assert.True(t, ok, "state of the first volume should have been persisted")

	require.NoError(t, h.Mount(disk), "remounting the active image should succeed")
}

// TestClose tests that closing unmounts the volume.
func TestClose(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)

	require.NoError(t, h.Close())
	assert.False(t, h.Mounted())
	require.ErrorIs(t, h.Create("a", 1), ErrNotMounted)
}

// TestPersist_Fail tests that a failed superblock write leaves the active
// superblock unchanged.
func TestPersist_Fail(t *testing.T) {
	t.Parallel()

	dev := &mockBlockDevice{}
	dev.On("ReadBlock", schema.SuperblockIndex, mock.Anything).Run(func(args mock.Arguments) {
		p, _ := args.Get(1).(*[schema.BlockSize]byte)
		sb := schema.NewSuperblock()
		sb.Encode(p)
	}).Return(nil).Once()
	dev.On("WriteBlock", schema.SuperblockIndex, mock.Anything).Return(errors.New("disk on fire"))
	dev.On("Close").Return(nil)

	st := &mockStorage{}
	st.On("Open", "mock").Return(dev, nil).Once()

	h := newEngine(st)
	require.NoError(t, h.Mount("mock"))

	err := h.Create("a", 0)
	require.Error(t, err)

	var classified *Error
	assert.False(t, errors.As(err, &classified), "i/o failures should not be classified")
	assert.Equal(t, schema.NewSuperblock(), h.Superblock())

	require.NoError(t, h.Close())

	dev.AssertExpectations(t)
	st.AssertExpectations(t)
}

// TestPersist_Fail_DataKept tests that data blocks given up by a delete or a
// shrink are not zeroed if the superblock cannot be written back.
func TestPersist_Fail_DataKept(t *testing.T) {
	t.Parallel()

	image := schema.NewSuperblock()
	image.Inodes[0] = schema.Inode{
		Name:       schema.MustParseName("a"),
		InUse:      true,
		Size:       3,
		StartBlock: 1,
		Parent:     schema.Root,
	}
	image.Bitmap.MarkUsed(1, 3)

	dev := &mockBlockDevice{}
	dev.On("ReadBlock", schema.SuperblockIndex, mock.Anything).Run(func(args mock.Arguments) {
		p, _ := args.Get(1).(*[schema.BlockSize]byte)
		image.Encode(p)
	}).Return(nil).Once()
	dev.On("WriteBlock", schema.SuperblockIndex, mock.Anything).Return(errors.New("disk on fire"))
	dev.On("Close").Return(nil)

	st := &mockStorage{}
	st.On("Open", "mock").Return(dev, nil).Once()

	h := newEngine(st)
	require.NoError(t, h.Mount("mock"))

	require.Error(t, h.Delete("a"))
	require.Error(t, h.Resize("a", 1))
	assert.Equal(t, image, h.Superblock())

	dev.AssertNotCalled(t, "ZeroBlock", mock.Anything)

	require.NoError(t, h.Close())
}

// TestMount_Fail_Read tests that an unreadable superblock is reported like a
// missing disk and closes the candidate.
func TestMount_Fail_Read(t *testing.T) {
	t.Parallel()

	dev := &mockBlockDevice{}
	dev.On("ReadBlock", schema.SuperblockIndex, mock.Anything).Return(errors.New("bad sector")).Once()
	dev.On("Close").Return(nil).Once()

	st := &mockStorage{}
	st.On("Open", "mock").Return(dev, nil).Once()

	h := newEngine(st)

	err := h.Mount("mock")
	require.ErrorIs(t, err, ErrDiskNotFound)
	assert.False(t, h.Mounted())

	dev.AssertExpectations(t)
}
