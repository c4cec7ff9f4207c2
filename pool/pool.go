package pool

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/joshuapare/blockpool/internal/format"
)

// Pool is a fixed-block allocator over one region. The zero value is not
// usable; obtain a Pool from Init or Attach.
type Pool struct {
	r   *region
	log *slog.Logger
}

// Init lays out a pool in region and returns its handle. region[0] must be
// aligned to alignment, which must be a power of two. Blocks are blockSize
// rounded up to alignment.
//
// Init overwrites the descriptor and bitmap at the start of region. Block
// contents are left as they are.
func Init(region []byte, blockSize, alignment int, opts *Options) (*Pool, error) {
	log := opts.logger()
	if !format.IsPow2(alignment) {
		return nil, fmt.Errorf("%w: alignment %d: %w", ErrInvalidArgument, alignment, format.ErrBadAlignment)
	}
	if len(region) == 0 {
		return nil, fmt.Errorf("%w: empty region", ErrInsufficientMemory)
	}
	if base := addrOfSlice(region); !format.IsAligned(base, alignment) {
		return nil, fmt.Errorf("%w: region base 0x%x is not %d-byte aligned", ErrInvalidArgument, base, alignment)
	}

	l, err := ComputeLayout(len(region), blockSize, alignment)
	if err != nil {
		return nil, err
	}
	r, err := newRegion(region, l, opts.tracker())
	if err != nil {
		return nil, err
	}
	if err := r.initialize(); err != nil {
		return nil, err
	}

	log.Debug("pool initialized",
		"region_size", l.RegionSize,
		"block_size", l.BlockSize,
		"alignment", l.Alignment,
		"block_count", l.BlockCount,
		"blocks_offset", l.BlocksOffset)
	return &Pool{r: r, log: log}, nil
}

// Attach opens a region that was previously laid out by Init, for example a
// memory-mapped file written by another process. The descriptor is validated
// against the layout its own parameters imply, and the free count against the
// bitmap.
func Attach(region []byte, opts *Options) (*Pool, error) {
	log := opts.logger()
	if len(region) < format.DescriptorSize {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientMemory, format.ErrTruncated)
	}
	d, err := format.ParseDescriptor(region)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	align := int(d.Alignment)
	if !format.IsPow2(align) {
		return nil, fmt.Errorf("%w: stored alignment %d: %w", ErrCorrupt, d.Alignment, format.ErrBadAlignment)
	}
	if base := addrOfSlice(region); !format.IsAligned(base, align) {
		return nil, fmt.Errorf("%w: region base 0x%x is not %d-byte aligned", ErrInvalidArgument, base, align)
	}
	if d.RegionSize > uint64(len(region)) {
		return nil, fmt.Errorf("%w: descriptor records %d bytes, region has %d", ErrInsufficientMemory, d.RegionSize, len(region))
	}
	if d.BlockSize > math.MaxInt {
		return nil, fmt.Errorf("%w: stored block size %d", ErrCorrupt, d.BlockSize)
	}

	l, err := ComputeLayout(int(d.RegionSize), int(d.BlockSize), align)
	if err != nil {
		return nil, fmt.Errorf("%w: stored parameters: %w", ErrCorrupt, err)
	}
	if uint64(l.BlockSize) != d.BlockSize ||
		uint64(l.BlockCount) != d.BlockCount ||
		uint64(l.BlocksOffset) != d.BlocksOffset {
		return nil, fmt.Errorf("%w: descriptor (block_size=%d count=%d blocks_offset=%d) disagrees with computed layout (%d, %d, %d)",
			ErrCorrupt, d.BlockSize, d.BlockCount, d.BlocksOffset, l.BlockSize, l.BlockCount, l.BlocksOffset)
	}

	r, err := newRegion(region, l, opts.tracker())
	if err != nil {
		return nil, err
	}
	p := &Pool{r: r, log: log}
	if err := p.Check(); err != nil {
		return nil, err
	}

	log.Debug("pool attached",
		"region_size", l.RegionSize,
		"block_size", l.BlockSize,
		"block_count", l.BlockCount,
		"free_count", p.FreeCount())
	return p, nil
}

// mustBeValid panics if the descriptor tag was overwritten. This is the one
// policy for a bad tag on a live handle, in every build.
func (p *Pool) mustBeValid() {
	if tag := p.r.tag(); tag != format.PoolTag {
		panic(fmt.Errorf("%w: descriptor tag 0x%08x, want 0x%08x", ErrCorrupt, tag, format.PoolTag))
	}
}

// Alloc returns the address of a free block and marks it in use. ok is false
// when every block is allocated; that is an expected outcome, not an error.
func (p *Pool) Alloc() (Addr, bool) {
	i, ok := p.alloc()
	if !ok {
		return 0, false
	}
	return p.r.addr(i), true
}

// alloc runs the next-fit scan: from the cursor to the end, then from 0 up to
// the cursor. Each block is examined at most once.
func (p *Pool) alloc() (int, bool) {
	p.mustBeValid()
	r := p.r
	count := r.layout.BlockCount
	cursor := int(min(r.cursor(), uint64(count)))

	i, ok := r.bits.FirstClear(cursor, count)
	if !ok {
		i, ok = r.bits.FirstClear(0, cursor)
	}
	if !ok {
		return 0, false
	}

	r.mark(i)
	r.setCursor(uint64((i + 1) % count))
	r.setFreeCount(r.freeCount() - 1)
	return i, true
}

// Free returns the block at a to the pool. It fails with ErrInvalidArgument
// when a is not the start of one of the pool's blocks, and with ErrDoubleFree
// when the block is not allocated. A failed Free changes nothing.
func (p *Pool) Free(a Addr) error {
	p.mustBeValid()
	i, err := p.r.index(a)
	if err != nil {
		p.log.Debug("free rejected", "addr", fmt.Sprintf("0x%x", uintptr(a)), "err", err)
		return err
	}
	return p.free(i)
}

func (p *Pool) free(i int) error {
	if !p.r.bits.Test(i) {
		err := fmt.Errorf("block %d: %w", i, ErrDoubleFree)
		p.log.Debug("free rejected", "index", i, "err", err)
		return err
	}
	p.r.unmark(i)
	p.r.setFreeCount(p.r.freeCount() + 1)
	return nil
}

// Check verifies the descriptor tag, the cursor range, and that the free
// count matches the bitmap.
func (p *Pool) Check() error {
	r := p.r
	if tag := r.tag(); tag != format.PoolTag {
		return fmt.Errorf("%w: descriptor tag 0x%08x: %w", ErrCorrupt, tag, format.ErrSignatureMismatch)
	}
	count := uint64(r.layout.BlockCount)
	if c := r.cursor(); c >= count {
		return fmt.Errorf("%w: scan cursor %d out of range [0,%d)", ErrCorrupt, c, count)
	}
	free := r.freeCount()
	if free > count {
		return fmt.Errorf("%w: free count %d exceeds block count %d", ErrCorrupt, free, count)
	}
	if used := uint64(r.bits.CountSet()); free != count-used {
		return fmt.Errorf("%w: free count %d, bitmap says %d", ErrCorrupt, free, count-used)
	}
	return nil
}

// Base returns the address of block 0.
func (p *Pool) Base() Addr { return Addr(p.r.first()) }

// BlockSize returns the aligned block size.
func (p *Pool) BlockSize() int { return p.r.layout.BlockSize }

// BlockCount returns the number of blocks in the pool.
func (p *Pool) BlockCount() int { return p.r.layout.BlockCount }

// FreeCount returns the number of unallocated blocks.
func (p *Pool) FreeCount() int { return int(p.r.freeCount()) }

// Cursor returns the index the next Alloc starts scanning from.
func (p *Pool) Cursor() int { return int(p.r.cursor()) }

// Layout returns the region layout.
func (p *Pool) Layout() Layout { return p.r.layout }

// Stats returns a snapshot of the pool's layout and occupancy.
func (p *Pool) Stats() Stats {
	l := p.r.layout
	free := p.FreeCount()
	return Stats{
		RegionSize: l.RegionSize,
		BlockSize:  l.BlockSize,
		Alignment:  l.Alignment,
		BlockCount: l.BlockCount,
		FreeCount:  free,
		InUse:      l.BlockCount - free,
		Cursor:     p.Cursor(),
		Overhead:   l.Overhead(),
		Slack:      l.Slack(),
	}
}

// Index returns the block index of a.
func (p *Pool) Index(a Addr) (int, error) {
	return p.r.index(a)
}

// AddrOf returns the address of block i.
func (p *Pool) AddrOf(i int) (Addr, error) {
	if i < 0 || i >= p.r.layout.BlockCount {
		return 0, fmt.Errorf("block index %d out of range [0,%d): %w", i, p.r.layout.BlockCount, ErrInvalidArgument)
	}
	return p.r.addr(i), nil
}

// Allocated reports whether block i is in use. Out-of-range indexes report false.
func (p *Pool) Allocated(i int) bool {
	if i < 0 || i >= p.r.layout.BlockCount {
		return false
	}
	return p.r.bits.Test(i)
}

// Offset returns a's offset from the start of the region. Unlike an Addr, an
// offset stays meaningful when the region is mapped again at another address.
func (p *Pool) Offset(a Addr) (int, error) {
	i, err := p.r.index(a)
	if err != nil {
		return 0, err
	}
	return p.r.layout.BlocksOffset + i*p.r.layout.BlockSize, nil
}

// AddrAt is the inverse of Offset.
func (p *Pool) AddrAt(off int) (Addr, error) {
	if off < 0 || off >= p.r.layout.RegionSize {
		return 0, fmt.Errorf("offset %d outside region of %d bytes: %w", off, p.r.layout.RegionSize, ErrInvalidArgument)
	}
	a := Addr(p.r.base + uintptr(off))
	if _, err := p.r.index(a); err != nil {
		return 0, err
	}
	return a, nil
}

// ForEachAllocated calls fn for every allocated block in index order until fn
// returns false.
func (p *Pool) ForEachAllocated(fn func(i int, a Addr) bool) {
	for i, ok := p.r.bits.NextSet(0); ok; i, ok = p.r.bits.NextSet(i + 1) {
		if !fn(i, p.r.addr(i)) {
			return
		}
	}
}
