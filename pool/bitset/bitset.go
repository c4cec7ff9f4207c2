// Package bitset implements the occupancy bitmap of a block pool over bytes
// that live inside the pool's region.
//
// Bits are stored in 32-bit little-endian words. Bit i lives in word i/32 at
// position i%32, so the encoded form matches a C array of uint32 on a
// little-endian host.
//
// A Bitset does not own its storage. It is a view that reads and writes the
// backing slice directly, which is what lets the bitmap persist inside a
// memory-mapped region.
package bitset

import (
	"fmt"
	"math/bits"

	"github.com/joshuapare/blockpool/internal/buf"
	"github.com/joshuapare/blockpool/internal/format"
)

const (
	// WordBits is the number of bits per storage word.
	WordBits = format.BitmapWordBits
	// WordBytes is the encoded size of one storage word.
	WordBytes = format.BitmapWordBytes
)

// Bitset is a fixed-length bit view over a byte slice.
type Bitset struct {
	words []byte
	n     int
}

// Bytes returns the number of bytes needed to store n bits.
func Bytes(n int) int {
	return format.BitmapBytes(n)
}

// New returns a view of n bits over storage. storage must hold at least
// Bytes(n) bytes; any excess is ignored.
func New(storage []byte, n int) (Bitset, error) {
	if n < 0 {
		return Bitset{}, fmt.Errorf("bitset: negative length %d", n)
	}
	words, ok := buf.Slice(storage, 0, Bytes(n))
	if !ok {
		return Bitset{}, fmt.Errorf("bitset: need %d bytes for %d bits, have %d", Bytes(n), n, len(storage))
	}
	return Bitset{words: words, n: n}, nil
}

// Len returns the number of bits in the set.
func (b Bitset) Len() int { return b.n }

// WordOffset returns the byte offset, relative to the start of storage, of
// the word that holds bit i.
func (b Bitset) WordOffset(i int) int {
	return (i / WordBits) * WordBytes
}

func (b Bitset) word(w int) uint32 {
	return buf.U32LE(b.words[w*WordBytes:])
}

func (b Bitset) putWord(w int, v uint32) {
	buf.PutU32LE(b.words[w*WordBytes:], v)
}

func (b Bitset) check(i int) {
	if i < 0 || i >= b.n {
		panic(fmt.Sprintf("bitset: index %d out of range [0,%d)", i, b.n))
	}
}

// Test reports whether bit i is set.
func (b Bitset) Test(i int) bool {
	b.check(i)
	return b.word(i/WordBits)&(1<<(i%WordBits)) != 0
}

// Set sets bit i.
func (b Bitset) Set(i int) {
	b.check(i)
	w := i / WordBits
	b.putWord(w, b.word(w)|1<<(i%WordBits))
}

// Clear clears bit i.
func (b Bitset) Clear(i int) {
	b.check(i)
	w := i / WordBits
	b.putWord(w, b.word(w)&^(1<<(i%WordBits)))
}

// Reset clears every bit, including the unused tail of the last word.
func (b Bitset) Reset() {
	clear(b.words)
}

// CountSet returns the number of set bits among the first Len() bits.
func (b Bitset) CountSet() int {
	total := 0
	nw := format.BitmapWords(b.n)
	for w := 0; w < nw; w++ {
		total += bits.OnesCount32(b.word(w) & b.validMask(w))
	}
	return total
}

// FirstClear returns the lowest index in [from, to) whose bit is clear.
// ok is false when every bit in the range is set or the range is empty.
// Bounds are clamped to [0, Len()].
func (b Bitset) FirstClear(from, to int) (int, bool) {
	from = max(from, 0)
	to = min(to, b.n)
	if from >= to {
		return 0, false
	}
	for w := from / WordBits; w*WordBits < to; w++ {
		free := ^b.word(w) & b.validMask(w)
		if w == from/WordBits {
			free &^= lowMask(from % WordBits)
		}
		if end := to - w*WordBits; end < WordBits {
			free &= lowMask(end)
		}
		if free != 0 {
			return w*WordBits + bits.TrailingZeros32(free), true
		}
	}
	return 0, false
}

// NextSet returns the lowest index >= from whose bit is set.
func (b Bitset) NextSet(from int) (int, bool) {
	from = max(from, 0)
	if from >= b.n {
		return 0, false
	}
	for w := from / WordBits; w*WordBits < b.n; w++ {
		set := b.word(w) & b.validMask(w)
		if w == from/WordBits {
			set &^= lowMask(from % WordBits)
		}
		if set != 0 {
			return w*WordBits + bits.TrailingZeros32(set), true
		}
	}
	return 0, false
}

// validMask masks off the bits of word w that lie beyond Len().
func (b Bitset) validMask(w int) uint32 {
	if rem := b.n - w*WordBits; rem < WordBits {
		return lowMask(rem)
	}
	return ^uint32(0)
}

// lowMask returns a mask with the low k bits set, 0 <= k <= 32.
func lowMask(k int) uint32 {
	if k >= WordBits {
		return ^uint32(0)
	}
	return 1<<k - 1
}
