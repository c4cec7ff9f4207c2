package pool

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joshuapare/blockpool/internal/mmfile"
	"github.com/joshuapare/blockpool/pool/dirty"
)

// FilePool is a Pool whose region is a shared memory-mapped file. Descriptor
// and bitmap writes are tracked and flushed by Flush; Close flushes and
// unmaps.
//
// Addresses differ between mappings of the same file. Use Offset and AddrAt
// to refer to blocks across processes.
type FilePool struct {
	*Pool
	path string
	m    *mmfile.Mapping
	dt   *dirty.Tracker
}

// CreateFile creates (or truncates) path to size bytes, maps it, and lays out
// a pool in it. Mappings are page aligned, so alignment must not exceed the
// page size. opts.Tracker is replaced by the file's own tracker.
func CreateFile(path string, size, blockSize, alignment int, opts *Options) (*FilePool, error) {
	if _, err := ComputeLayout(size, blockSize, alignment); err != nil {
		return nil, err
	}
	if alignment > mmfile.PageSize {
		return nil, fmt.Errorf("%w: alignment %d exceeds page size %d", ErrInvalidArgument, alignment, mmfile.PageSize)
	}

	m, err := mmfile.MapRW(path, size, true)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	fp := &FilePool{path: path, m: m, dt: dirty.NewTracker(m.Data)}

	p, err := Init(m.Data, blockSize, alignment, fp.options(opts))
	if err != nil {
		_ = m.Close()
		_ = os.Remove(path)
		return nil, err
	}
	fp.Pool = p
	if err := fp.Flush(context.Background()); err != nil {
		return nil, errors.Join(err, fp.Close())
	}
	return fp, nil
}

// OpenFile maps an existing pool file read-write and attaches to it.
func OpenFile(path string, opts *Options) (*FilePool, error) {
	m, err := mmfile.MapRW(path, 0, false)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	fp := &FilePool{path: path, m: m, dt: dirty.NewTracker(m.Data)}

	p, err := Attach(m.Data, fp.options(opts))
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("attach %s: %w", path, err)
	}
	fp.Pool = p
	return fp, nil
}

func (fp *FilePool) options(opts *Options) *Options {
	o := Options{Tracker: fp.dt}
	if opts != nil {
		o.Logger = opts.Logger
	}
	return &o
}

// Path returns the backing file path.
func (fp *FilePool) Path() string { return fp.path }

// Tracker returns the dirty tracker that records metadata writes.
func (fp *FilePool) Tracker() *dirty.Tracker { return fp.dt }

// MarkDirty records that n bytes at offset off inside the block at a were
// written, so the next Flush persists them.
func (fp *FilePool) MarkDirty(a Addr, off, n int) error {
	start, err := fp.Offset(a)
	if err != nil {
		return err
	}
	if off < 0 || n < 0 || off+n > fp.BlockSize() {
		return fmt.Errorf("range [%d,%d) outside %d-byte block: %w", off, off+n, fp.BlockSize(), ErrInvalidArgument)
	}
	fp.dt.Add(start+off, n)
	return nil
}

// Flush writes tracked ranges to the file.
func (fp *FilePool) Flush(ctx context.Context) error {
	return fp.dt.Flush(ctx)
}

// Sync flushes the whole mapping, including untracked block writes.
func (fp *FilePool) Sync() error {
	if err := fp.m.Sync(); err != nil {
		return err
	}
	fp.dt.Reset()
	return nil
}

// Close flushes tracked ranges and unmaps the file. The pool must not be used
// afterwards.
func (fp *FilePool) Close() error {
	var flushErr error
	if fp.m.Data != nil {
		flushErr = fp.dt.Flush(context.Background())
	}
	return errors.Join(flushErr, fp.m.Close())
}
