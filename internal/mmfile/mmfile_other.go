//go:build !unix

package mmfile

import (
	"fmt"
	"os"
)

// Map reads the entire file when mmap is not available.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}

// Anonymous returns a page-aligned heap buffer when mmap is not available.
func Anonymous(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmfile: invalid anonymous mapping size %d", size)
	}
	data, err := Aligned(size, PageSize)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}

// Mapping holds a page-aligned copy of a file. Sync writes it back.
type Mapping struct {
	Data []byte
	f    *os.File
}

// MapRW loads path into an aligned buffer. With create, the file is created
// (or truncated) to size bytes first.
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
	if st.Size() != int64(size) || size == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: size mismatch for %s: file %d, want %d", path, st.Size(), size)
	}
	data, err := Aligned(size, PageSize)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.ReadAt(data, 0); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Mapping{Data: data, f: f}, nil
}

// Sync writes the buffer back to the file and syncs it.
func (m *Mapping) Sync() error {
	if m.Data == nil {
		return nil
	}
	if _, err := m.f.WriteAt(m.Data, 0); err != nil {
		return err
	}
	return m.f.Sync()
}

// Close syncs and closes the file. Calling Close twice is a no-op.
func (m *Mapping) Close() error {
	if m.f == nil {
		return nil
	}
	if err := m.Sync(); err != nil {
		return err
	}
	err := m.f.Close()
	m.f = nil
	m.Data = nil
	return err
}
