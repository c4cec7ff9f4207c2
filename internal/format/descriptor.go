package format

import (
	"fmt"

	"github.com/joshuapare/blockpool/internal/buf"
)

// Descriptor is the decoded form of the 64-byte header at the start of a pool
// region. See the offset table in consts.go.
type Descriptor struct {
	Tag          uint32
	Version      uint16
	Alignment    uint32
	RegionSize   uint64
	BlockSize    uint64
	BlockCount   uint64
	FreeCount    uint64
	Cursor       uint64
	BlocksOffset uint64
}

// ParseDescriptor decodes a descriptor and validates its tag and version.
// Field-level consistency (counts, offsets) is left to the caller, which knows
// the region it came from.
func ParseDescriptor(b []byte) (Descriptor, error) {
	if len(b) < DescriptorSize {
		return Descriptor{}, fmt.Errorf("descriptor: %w", ErrTruncated)
	}
	d := Descriptor{
		Tag:          buf.U32LE(b[DescTagOffset:]),
		Version:      buf.U16LE(b[DescVersionOffset:]),
		Alignment:    buf.U32LE(b[DescAlignmentOffset:]),
		RegionSize:   buf.U64LE(b[DescRegionSizeOffset:]),
		BlockSize:    buf.U64LE(b[DescBlockSizeOffset:]),
		BlockCount:   buf.U64LE(b[DescBlockCountOffset:]),
		FreeCount:    buf.U64LE(b[DescFreeCountOffset:]),
		Cursor:       buf.U64LE(b[DescCursorOffset:]),
		BlocksOffset: buf.U64LE(b[DescBlocksOffset:]),
	}
	if d.Tag != PoolTag {
		return d, fmt.Errorf("descriptor: got tag 0x%08x: %w", d.Tag, ErrSignatureMismatch)
	}
	if d.Version != LayoutVersion {
		return d, fmt.Errorf("descriptor: version %d: %w", d.Version, ErrUnsupported)
	}
	return d, nil
}

// WriteDescriptor encodes d into b, zeroing the reserved fields.
func WriteDescriptor(b []byte, d Descriptor) error {
	if len(b) < DescriptorSize {
		return fmt.Errorf("descriptor: %w", ErrTruncated)
	}
	clear(b[:DescriptorSize])
	buf.PutU32LE(b[DescTagOffset:], d.Tag)
	buf.PutU16LE(b[DescVersionOffset:], d.Version)
	buf.PutU32LE(b[DescAlignmentOffset:], d.Alignment)
	buf.PutU64LE(b[DescRegionSizeOffset:], d.RegionSize)
	buf.PutU64LE(b[DescBlockSizeOffset:], d.BlockSize)
	buf.PutU64LE(b[DescBlockCountOffset:], d.BlockCount)
	buf.PutU64LE(b[DescFreeCountOffset:], d.FreeCount)
	buf.PutU64LE(b[DescCursorOffset:], d.Cursor)
	buf.PutU64LE(b[DescBlocksOffset:], d.BlocksOffset)
	return nil
}
