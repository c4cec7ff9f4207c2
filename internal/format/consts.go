// Package format holds the persisted layout of a block pool region: the
// descriptor that sits at offset 0, the occupancy bitmap that follows it, and
// the alignment arithmetic used to place the block array. Keeping these
// definitions apart from the pool lets tooling decode a region without
// constructing a live pool.
package format

const (
	// PoolTag is the validity tag written at descriptor offset 0.
	//
	// Stored little-endian, so the first four bytes of an initialized region
	// read 0d 0c 0b 0a.
	PoolTag uint32 = 0x0a0b0c0d

	// LayoutVersion is the current descriptor version.
	LayoutVersion uint16 = 1

	// DescriptorSize is the fixed size of the descriptor header in bytes.
	// The occupancy bitmap always begins immediately after it.
	DescriptorSize = 0x40

	// BitmapOffset is the region offset of the occupancy bitmap.
	BitmapOffset = DescriptorSize

	// BitmapWordBits is the number of blocks tracked by one bitmap word.
	BitmapWordBits = 32

	// BitmapWordBytes is the encoded size of one bitmap word.
	BitmapWordBytes = 4
)

// Descriptor field offsets. Layout (little-endian):
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x00    4    Tag (PoolTag)
//	 0x04    2    Layout version
//	 0x06    2    Reserved (zero)
//	 0x08    4    Alignment (power of two)
//	 0x0C    4    Reserved (zero)
//	 0x10    8    Region size in bytes
//	 0x18    8    Block size (already aligned)
//	 0x20    8    Block count
//	 0x28    8    Free block count
//	 0x30    8    Scan cursor (next block index examined by allocation)
//	 0x38    8    Offset of block 0 from the start of the region
const (
	DescTagOffset        = 0x00
	DescVersionOffset    = 0x04
	DescAlignmentOffset  = 0x08
	DescRegionSizeOffset = 0x10
	DescBlockSizeOffset  = 0x18
	DescBlockCountOffset = 0x20
	DescFreeCountOffset  = 0x28
	DescCursorOffset     = 0x30
	DescBlocksOffset     = 0x38
)
