//go:build unix

package mmfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Map maps the file at path read-only and returns its contents.
func Map(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() // safe before return; mapping keeps pages alive

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := info.Size()
	if size == 0 {
		return []byte{}, func() error { return nil }, nil
	}
	if size > int64(^uint(0)>>1) {
		return nil, nil, fmt.Errorf("mmfile: file too large to map (%d bytes)", size)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, unmapper(data), nil
}

// Anonymous returns a private, zero-filled, page-aligned mapping of size bytes.
func Anonymous(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmfile: invalid anonymous mapping size %d", size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: anonymous mmap: %w", err)
	}
	return data, unmapper(data), nil
}

// Mapping is a shared read-write mapping of a whole file. Stores into Data
// reach the file; Sync makes them durable.
type Mapping struct {
	Data []byte
	f    *os.File
}

// MapRW maps path read-write. With create, the file is created (or truncated)
// to size bytes first. Without create, size may be 0 to map the file as it is;
// a non-zero size must match the file size.
func MapRW(path string, size int, create bool) (*Mapping, error) {
	flag := os.O_RDWR
	if create {
		flag |= os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, err
	}
	if create {
		if err := f.Truncate(int64(size)); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if size == 0 {
		size = int(st.Size())
	}
	if st.Size() != int64(size) {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: size mismatch for %s: file %d, want %d", path, st.Size(), size)
	}
	if size == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: empty file: %s", path)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}
	return &Mapping{Data: data, f: f}, nil
}

// Sync flushes the whole mapping and the file descriptor.
func (m *Mapping) Sync() error {
	if m.Data == nil {
		return nil
	}
	if err := unix.Msync(m.Data, unix.MS_SYNC); err != nil {
		return err
	}
	return unix.Fsync(int(m.f.Fd()))
}

// Close syncs, unmaps, and closes the file. Calling Close twice is a no-op.
func (m *Mapping) Close() error {
	if m.Data != nil {
		if err := unix.Msync(m.Data, unix.MS_SYNC); err != nil {
			return err
		}
		if err := unix.Munmap(m.Data); err != nil {
			return err
		}
		m.Data = nil
	}
	if m.f != nil {
		if err := m.f.Close(); err != nil {
			return err
		}
		m.f = nil
	}
	return nil
}

func unmapper(data []byte) func() error {
	return func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
}
