package validation

import (
	"errors"
	"testing"

	"github.com/desertwitch/fssim/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validSuperblock returns a consistent superblock holding a file in the root,
// a directory and a file inside that directory.
func validSuperblock() schema.Superblock {
	sb := schema.NewSuperblock()

	sb.Inodes[0] = schema.Inode{Name: schema.MustParseName("a"), InUse: true, Size: 3, StartBlock: 1, Parent: schema.Root}
	sb.Inodes[1] = schema.Inode{Name: schema.MustParseName("dir"), InUse: true, IsDir: true, Parent: schema.Root}
	sb.Inodes[2] = schema.Inode{Name: schema.MustParseName("a"), InUse: true, Size: 2, StartBlock: 10, Parent: schema.Slot(1)}
	sb.Bitmap.MarkUsed(1, 3)
	sb.Bitmap.MarkUsed(10, 2)

	return sb
}

// TestCheck_Success tests that consistent superblocks pass all checks.
func TestCheck_Success(t *testing.T) {
	t.Parallel()

	empty := schema.NewSuperblock()
	require.NoError(t, Check(&empty))

	sb := validSuperblock()
	require.NoError(t, Check(&sb))

	full := schema.NewSuperblock()
	full.Inodes[5] = schema.Inode{Name: schema.MustParseName("big"), InUse: true, Size: 127, StartBlock: 1, Parent: schema.Root}
	full.Bitmap.MarkUsed(1, 127)
	require.NoError(t, Check(&full))

	unnamed := validSuperblock()
	unnamed.Inodes[0].Name = schema.Name{}
	require.NoError(t, Check(&unnamed), "an in-use inode without a name is not all-zero")
}

// TestCheck_Fail tests that each violation is reported with the code of its
// check.
func TestCheck_Fail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(sb *schema.Superblock)
		wantCode int
		wantErr  error
	}{
		{
			name:     "free inode with name",
			mutate:   func(sb *schema.Superblock) { sb.Inodes[7].Name = schema.MustParseName("x") },
			wantCode: 1,
			wantErr:  ErrFreeNotZero,
		},
		{
			name:     "free inode with start block",
			mutate:   func(sb *schema.Superblock) { sb.Inodes[7].StartBlock = 4 },
			wantCode: 1,
			wantErr:  ErrFreeNotZero,
		},
		{
			name:     "file starting at superblock",
			mutate:   func(sb *schema.Superblock) { sb.Inodes[0].StartBlock = 0 },
			wantCode: 2,
			wantErr:  ErrFileExtent,
		},
		{
			name: "file past end of volume",
			mutate: func(sb *schema.Superblock) {
				sb.Inodes[2].StartBlock = 120
				sb.Inodes[2].Size = 10
			},
			wantCode: 2,
			wantErr:  ErrFileExtent,
		},
		{
			name:     "directory with size",
			mutate:   func(sb *schema.Superblock) { sb.Inodes[1].Size = 1 },
			wantCode: 3,
			wantErr:  ErrDirectoryFields,
		},
		{
			name:     "directory with start block",
			mutate:   func(sb *schema.Superblock) { sb.Inodes[1].StartBlock = 50 },
			wantCode: 3,
			wantErr:  ErrDirectoryFields,
		},
		{
			name:     "parent is a file",
			mutate:   func(sb *schema.Superblock) { sb.Inodes[2].Parent = schema.Slot(0) },
			wantCode: 4,
			wantErr:  ErrParentNotDirectory,
		},
		{
			name:     "parent is free",
			mutate:   func(sb *schema.Superblock) { sb.Inodes[2].Parent = schema.Slot(40) },
			wantCode: 4,
			wantErr:  ErrParentNotDirectory,
		},
		{
			name: "parent cycle",
			mutate: func(sb *schema.Superblock) {
				sb.Inodes[3] = schema.Inode{Name: schema.MustParseName("loop"), InUse: true, IsDir: true, Parent: schema.Slot(4)}
				sb.Inodes[4] = schema.Inode{Name: schema.MustParseName("back"), InUse: true, IsDir: true, Parent: schema.Slot(3)}
			},
			wantCode: 4,
			wantErr:  ErrParentCycle,
		},
		{
			name:     "self parented directory",
			mutate:   func(sb *schema.Superblock) { sb.Inodes[1].Parent = schema.Slot(1) },
			wantCode: 4,
			wantErr:  ErrParentCycle,
		},
		{
			name:     "duplicate name in root",
			mutate:   func(sb *schema.Superblock) { sb.Inodes[1].Name = schema.MustParseName("a") },
			wantCode: 5,
			wantErr:  ErrDuplicateName,
		},
		{
			name:     "bitmap marks unowned block",
			mutate:   func(sb *schema.Superblock) { sb.Bitmap.SetUsed(100) },
			wantCode: 6,
			wantErr:  ErrBitmapMismatch,
		},
		{
			name:     "bitmap misses owned block",
			mutate:   func(sb *schema.Superblock) { sb.Bitmap.SetFree(2) },
			wantCode: 6,
			wantErr:  ErrBitmapMismatch,
		},
		{
			name: "overlapping files",
			mutate: func(sb *schema.Superblock) {
				sb.Inodes[2].StartBlock = 2
				sb.Bitmap.MarkFree(10, 2)
			},
			wantCode: 6,
			wantErr:  ErrBitmapMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sb := validSuperblock()
			tt.mutate(&sb)

			err := Check(&sb)
			require.ErrorIs(t, err, tt.wantErr)

			var inconsistent *InconsistencyError
			require.ErrorAs(t, err, &inconsistent)
			assert.Equal(t, tt.wantCode, inconsistent.Code)
		})
	}
}

// TestCheck_Fail_InvalidParent tests that the reserved invalid parent index
// is rejected even though no slot carries it.
func TestCheck_Fail_InvalidParent(t *testing.T) {
	t.Parallel()

	sb := validSuperblock()

	var raw [schema.BlockSize]byte
	sb.Encode(&raw)

	// dir_parent of slot 0: file, parent index 126.
	raw[schema.BitmapSize+7] = 126

	decoded := schema.DecodeSuperblock(&raw)
	err := Check(&decoded)

	require.ErrorIs(t, err, ErrInvalidParent)

	var inconsistent *InconsistencyError
	require.True(t, errors.As(err, &inconsistent))
	assert.Equal(t, 4, inconsistent.Code)
}

// TestCheck_Order tests that the lowest violated check is reported.
func TestCheck_Order(t *testing.T) {
	t.Parallel()

	sb := validSuperblock()
	sb.Bitmap.SetUsed(100)
	sb.Inodes[1].Size = 4

	var inconsistent *InconsistencyError
	require.ErrorAs(t, Check(&sb), &inconsistent)
	assert.Equal(t, 3, inconsistent.Code)
}
