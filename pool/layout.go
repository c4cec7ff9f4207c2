package pool

import (
	"fmt"
	"math"

	"github.com/joshuapare/blockpool/internal/buf"
	"github.com/joshuapare/blockpool/internal/format"
)

// Layout describes where the descriptor, bitmap and blocks sit in a region.
// All offsets are relative to the first byte of the region.
type Layout struct {
	RegionSize   int `json:"region_size"` // bytes reserved by the caller
	BlockSize    int `json:"block_size"`  // requested size rounded up to Alignment
	Alignment    int `json:"alignment"`
	BlockCount   int `json:"block_count"`
	BitmapOffset int `json:"bitmap_offset"`
	BitmapSize   int `json:"bitmap_size"`
	BlocksOffset int `json:"blocks_offset"`
}

// Overhead returns the bytes consumed before block 0.
func (l Layout) Overhead() int { return l.BlocksOffset }

// End returns the offset just past the last block.
func (l Layout) End() int { return l.BlocksOffset + l.BlockCount*l.BlockSize }

// Slack returns the trailing bytes that are too few to form another block.
func (l Layout) Slack() int { return l.RegionSize - l.End() }

// ComputeLayout computes the layout of a region of regionSize bytes carved into
// blocks of at least blockSize bytes, each aligned to alignment.
//
// It does not look at any memory, so it cannot check that the region's base
// address is aligned; Init does that.
func ComputeLayout(regionSize, blockSize, alignment int) (Layout, error) {
	if !format.IsPow2(alignment) || uint64(alignment) > math.MaxUint32 {
		return Layout{}, fmt.Errorf("%w: alignment %d: %w", ErrInvalidArgument, alignment, format.ErrBadAlignment)
	}
	if blockSize <= 0 {
		return Layout{}, fmt.Errorf("%w: block size %d must be positive", ErrInvalidArgument, blockSize)
	}
	if regionSize < 0 {
		return Layout{}, fmt.Errorf("%w: negative region size %d", ErrInvalidArgument, regionSize)
	}
	bs, ok := format.AlignUp(blockSize, alignment)
	if !ok {
		return Layout{}, fmt.Errorf("%w: block size %d overflows when aligned to %d", ErrInvalidArgument, blockSize, alignment)
	}
	if regionSize <= bs || regionSize <= format.DescriptorSize {
		return Layout{}, fmt.Errorf("%w: region of %d bytes cannot hold a %d-byte block", ErrInsufficientMemory, regionSize, bs)
	}

	// blocksOffset returns where block 0 starts for n blocks, and whether n
	// blocks fit after it.
	blocksOffset := func(n int) (int, bool) {
		off, ok := format.AlignUp(format.BitmapOffset+format.BitmapBytes(n), alignment)
		if !ok {
			return 0, false
		}
		_, err := buf.CheckArrayBounds(regionSize, off, n, bs)
		return off, err == nil
	}

	// The bitmap size depends on the block count and the block count on the
	// space the bitmap leaves, so shrink n until both agree.
	n := (regionSize - format.DescriptorSize) / bs
	for n > 0 {
		off, fits := blocksOffset(n)
		if fits {
			break
		}
		if off > 0 && off <= regionSize {
			if fit := (regionSize - off) / bs; fit < n {
				n = fit
				continue
			}
		}
		n--
	}
	if n == 0 {
		return Layout{}, fmt.Errorf("%w: region of %d bytes has no room for a %d-byte block after metadata", ErrInsufficientMemory, regionSize, bs)
	}
	// A smaller bitmap may have freed an alignment unit for one more block.
	for {
		if _, fits := blocksOffset(n + 1); !fits {
			break
		}
		n++
	}

	off, _ := blocksOffset(n)
	return Layout{
		RegionSize:   regionSize,
		BlockSize:    bs,
		Alignment:    alignment,
		BlockCount:   n,
		BitmapOffset: format.BitmapOffset,
		BitmapSize:   format.BitmapBytes(n),
		BlocksOffset: off,
	}, nil
}
