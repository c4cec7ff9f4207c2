package pool

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/blockpool/internal/buf"
	"github.com/joshuapare/blockpool/internal/format"
	"github.com/joshuapare/blockpool/pool/bitset"
)

// region is a typed view over the caller's memory. Offsets are validated once
// in newRegion; the accessors below trust them.
type region struct {
	data   []byte  // exactly layout.RegionSize bytes
	base   uintptr // address of data[0]
	layout Layout
	bits   bitset.Bitset
	dt     DirtyTracker
}

func addrOfSlice(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func newRegion(data []byte, l Layout, dt DirtyTracker) (*region, error) {
	if len(data) < l.RegionSize {
		return nil, fmt.Errorf("%w: region is %d bytes, layout needs %d", ErrInsufficientMemory, len(data), l.RegionSize)
	}
	data = data[:l.RegionSize:l.RegionSize]
	if _, err := buf.CheckArrayBounds(len(data), l.BlocksOffset, l.BlockCount, l.BlockSize); err != nil {
		return nil, fmt.Errorf("%w: block array: %w", ErrCorrupt, err)
	}
	if l.BitmapOffset+l.BitmapSize > l.BlocksOffset {
		return nil, fmt.Errorf("%w: bitmap [%d,%d) overlaps blocks at %d",
			ErrCorrupt, l.BitmapOffset, l.BitmapOffset+l.BitmapSize, l.BlocksOffset)
	}
	storage, ok := buf.Slice(data, l.BitmapOffset, l.BitmapSize)
	if !ok {
		return nil, fmt.Errorf("%w: bitmap out of bounds", ErrCorrupt)
	}
	bits, err := bitset.New(storage, l.BlockCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return &region{
		data:   data,
		base:   addrOfSlice(data),
		layout: l,
		bits:   bits,
		dt:     dt,
	}, nil
}

// initialize writes a fresh descriptor and clears the bitmap.
func (r *region) initialize() error {
	d := format.Descriptor{
		Tag:          format.PoolTag,
		Version:      format.LayoutVersion,
		Alignment:    uint32(r.layout.Alignment),
		RegionSize:   uint64(r.layout.RegionSize),
		BlockSize:    uint64(r.layout.BlockSize),
		BlockCount:   uint64(r.layout.BlockCount),
		FreeCount:    uint64(r.layout.BlockCount),
		Cursor:       0,
		BlocksOffset: uint64(r.layout.BlocksOffset),
	}
	if err := format.WriteDescriptor(r.data, d); err != nil {
		return err
	}
	r.bits.Reset()
	r.touch(0, r.layout.BitmapOffset+r.layout.BitmapSize)
	return nil
}

func (r *region) touch(off, n int) {
	if r.dt != nil {
		r.dt.Add(off, n)
	}
}

func (r *region) tag() uint32 {
	return buf.U32LE(r.data[format.DescTagOffset:])
}

func (r *region) u64(off int) uint64 {
	return buf.U64LE(r.data[off:])
}

func (r *region) putU64(off int, v uint64) {
	buf.PutU64LE(r.data[off:], v)
	r.touch(off, 8)
}

func (r *region) freeCount() uint64 { return r.u64(format.DescFreeCountOffset) }

func (r *region) setFreeCount(v uint64) { r.putU64(format.DescFreeCountOffset, v) }

func (r *region) cursor() uint64 { return r.u64(format.DescCursorOffset) }

func (r *region) setCursor(v uint64) { r.putU64(format.DescCursorOffset, v) }

// mark sets the occupancy bit of block i.
func (r *region) mark(i int) {
	r.bits.Set(i)
	r.touch(r.layout.BitmapOffset+r.bits.WordOffset(i), bitset.WordBytes)
}

// unmark clears the occupancy bit of block i.
func (r *region) unmark(i int) {
	r.bits.Clear(i)
	r.touch(r.layout.BitmapOffset+r.bits.WordOffset(i), bitset.WordBytes)
}

// first returns the address of block 0.
func (r *region) first() uintptr {
	return r.base + uintptr(r.layout.BlocksOffset)
}

func (r *region) addr(i int) Addr {
	return Addr(r.first() + uintptr(i)*uintptr(r.layout.BlockSize))
}

// index maps a block address back to its index. Addresses below block 0,
// past the last block, or inside a block are rejected.
func (r *region) index(a Addr) (int, error) {
	first := r.first()
	if uintptr(a) < first {
		return 0, fmt.Errorf("address 0x%x is below pool base 0x%x: %w", uintptr(a), first, ErrInvalidArgument)
	}
	delta := uintptr(a) - first
	bs := uintptr(r.layout.BlockSize)
	i := delta / bs
	if i >= uintptr(r.layout.BlockCount) {
		return 0, fmt.Errorf("address 0x%x is past the last block: %w", uintptr(a), ErrInvalidArgument)
	}
	if delta%bs != 0 {
		return 0, fmt.Errorf("address 0x%x is not on a block boundary: %w", uintptr(a), ErrInvalidArgument)
	}
	return int(i), nil
}

// block returns block i as a slice with length and capacity BlockSize.
func (r *region) block(i int) []byte {
	off := r.layout.BlocksOffset + i*r.layout.BlockSize
	b, _ := buf.Slice(r.data, off, r.layout.BlockSize)
	return b
}
