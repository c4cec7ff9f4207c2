//go:build unix

package mmfile

import (
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestMapReadOnlyUnix(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	path := filepath.Join(t.TempDir(), "test.bin")
	want := []byte{0xde, 0xad, 0xbe, 0xef, 0x42}
	require.NoError(t, os.WriteFile(path, want, 0o644))

	data, cleanup, err := Map(path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, cleanup())
	}()
	require.Equal(t, want, data)
}

func TestMapReadOnlyUnixZeroLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	data, cleanup, err := Map(path)
	require.NoError(t, err)
	require.Empty(t, data)
	require.NotNil(t, cleanup)
	require.NoError(t, cleanup())
}

func TestAnonymous(t *testing.T) {
	data, cleanup, err := Anonymous(3 * PageSize)
	require.NoError(t, err)
	defer func() { require.NoError(t, cleanup()) }()

	require.Len(t, data, 3*PageSize)
	addr := uintptr(unsafe.Pointer(&data[0]))
	require.Zero(t, addr%uintptr(PageSize), "anonymous mapping must be page aligned")
	for _, b := range data[:64] {
		require.Zero(t, b)
	}
	data[len(data)-1] = 0x7f // writable

	_, _, err = Anonymous(0)
	require.Error(t, err)
}

func TestMapRW_CreateWriteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.bin")

	m, err := MapRW(path, 2*PageSize, true)
	require.NoError(t, err)
	require.Len(t, m.Data, 2*PageSize)
	copy(m.Data[PageSize:], "persisted")
	require.NoError(t, m.Sync())
	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "second Close is a no-op")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "persisted", string(raw[PageSize:PageSize+9]))

	m2, err := MapRW(path, 0, false)
	require.NoError(t, err)
	defer m2.Close()
	require.Equal(t, "persisted", string(m2.Data[PageSize:PageSize+9]))
}

func TestMapRW_SizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))

	_, err := MapRW(path, 200, false)
	require.ErrorContains(t, err, "size mismatch")

	_, err = MapRW(filepath.Join(t.TempDir(), "missing.bin"), 0, false)
	require.Error(t, err)
}
