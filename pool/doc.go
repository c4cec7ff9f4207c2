// Package pool implements a fixed-block memory pool over a single
// caller-supplied region.
//
// # Overview
//
// A Pool partitions one contiguous []byte into equal-sized, aligned blocks and
// hands them out and takes them back through an occupancy bitmap. All pool
// metadata (a 64-byte descriptor and the bitmap) is carved out of the same
// region, so the pool performs no heap allocation of its own and a region that
// lives in a memory-mapped file can be re-attached later.
//
// # Region Layout
//
//	offset 0                      descriptor (64 bytes, see internal/format)
//	offset 64                     occupancy bitmap, ceil(n/32) uint32 words
//	AlignUp(64+bitmap, alignment) block 0, block 1, ... block n-1
//
// The block size is the requested size rounded up to the alignment, and the
// block count is whatever fits after the metadata, so the last block never
// runs past the end of the region and the bitmap never overlaps a block.
//
// # Usage Example
//
//	region, _ := mmfile.Aligned(1<<20, 4096)
//	p, err := pool.Init(region, 4096, 4096, nil)
//	if err != nil {
//	    return err
//	}
//
//	a, ok := p.Alloc()
//	if !ok {
//	    // exhausted: every block is in use
//	}
//	// ...
//	if err := p.Free(a); err != nil {
//	    return err
//	}
//
// AllocBlock and FreeBlock do the same with []byte views of the blocks.
//
// # Allocation Order
//
// Alloc is next-fit: the scan starts at a cursor just past the most recently
// allocated block, runs to the end of the bitmap, then wraps to the start. A
// single call examines each block at most once.
//
// # Errors
//
// Exhaustion is not an error: Alloc reports ok == false. Bad parameters and
// bad addresses return ErrInvalidArgument; a region too small for one block
// returns ErrInsufficientMemory. Freeing a block twice returns ErrDoubleFree.
// Using a Pool whose descriptor has been overwritten panics with ErrCorrupt,
// since no caller can recover from it.
//
// # Thread Safety
//
// Pool instances are not thread-safe. Callers must synchronize access
// externally or wrap the pool with NewLocked.
//
// # Related Packages
//
//   - github.com/joshuapare/blockpool/pool/bitset: the occupancy bitmap
//   - github.com/joshuapare/blockpool/pool/dirty: dirty-range tracking for mapped regions
//   - github.com/joshuapare/blockpool/internal/format: persisted descriptor layout
package pool
