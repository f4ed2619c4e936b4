package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertwitch/fssim/internal/allocation"
	"github.com/desertwitch/fssim/internal/defrag"
	"github.com/desertwitch/fssim/internal/io"
	"github.com/desertwitch/fssim/internal/schema"
	"github.com/desertwitch/fssim/internal/storage"
	"github.com/desertwitch/fssim/internal/validation"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testStorage struct {
	handler *storage.Handler
}

func (s testStorage) Open(path string) (schema.BlockDevice, error) {
	dev, err := s.handler.Open(path)
	if err != nil {
		return nil, err
	}

	return dev, nil
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Open(path string) (schema.BlockDevice, error) {
	args := m.Called(path)
	dev, _ := args.Get(0).(schema.BlockDevice)

	return dev, args.Error(1)
}

type mockBlockDevice struct {
	mock.Mock
}

func (m *mockBlockDevice) Path() string {
	return m.Called().String(0)
}

func (m *mockBlockDevice) ReadBlock(index int, p *[schema.BlockSize]byte) error {
	return m.Called(index, p).Error(0)
}

func (m *mockBlockDevice) WriteBlock(index int, p *[schema.BlockSize]byte) error {
	return m.Called(index, p).Error(0)
}

func (m *mockBlockDevice) ZeroBlock(index int) error {
	return m.Called(index).Error(0)
}

func (m *mockBlockDevice) Sync() error {
	return m.Called().Error(0)
}

func (m *mockBlockDevice) Close() error {
	return m.Called().Error(0)
}

func newEngine(storageHandler storageProvider) *Handler {
	ioHandler := io.NewHandler(true)

	return NewHandler(
		storageHandler,
		allocation.NewHandler(ioHandler),
		defrag.NewHandler(ioHandler),
	)
}

// newTestHandler returns a session with a freshly created, mounted volume.
func newTestHandler(t *testing.T) (*Handler, string) {
	t.Helper()

	dir := t.TempDir()
	disk := newImage(t, dir, "disk0")

	h := newEngine(testStorage{storage.NewHandler(&schema.OS{}, &schema.Unix{}, false)})
	t.Cleanup(func() { h.Close() })

	require.NoError(t, h.Mount(disk))

	return h, disk
}

func newImage(t *testing.T, dir string, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, storage.NewHandler(&schema.OS{}, &schema.Unix{}, false).Create(path))

	return path
}

// writeSuperblock overwrites block 0 of the image at path.
func writeSuperblock(t *testing.T, path string, sb schema.Superblock) {
	t.Helper()

	var raw [schema.BlockSize]byte
	sb.Encode(&raw)

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.WriteAt(raw[:], 0)
	require.NoError(t, err)
}

// readImage returns the raw content of block b of the image at path.
func readImage(t *testing.T, path string, b int) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return data[b*schema.BlockSize : (b+1)*schema.BlockSize]
}

// requireConsistent verifies that the active superblock passes all
// consistency checks and matches block 0 of the image.
func requireConsistent(t *testing.T, h *Handler, disk string) {
	t.Helper()

	sb := h.Superblock()
	require.NoError(t, validation.Check(&sb))

	var raw [schema.BlockSize]byte
	copy(raw[:], readImage(t, disk, schema.SuperblockIndex))
	require.Equal(t, sb, schema.DecodeSuperblock(&raw), "superblock on disk should match")
}

func listing(t *testing.T, h *Handler) string {
	t.Helper()

	entries, err := h.List()
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, WriteListing(&sb, entries))

	return sb.String()
}
