package format

import "github.com/joshuapare/blockpool/internal/buf"

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// AlignUp returns n rounded up to the next multiple of a, which must be a
// power of two. ok is false when a is not a power of two or the result would
// overflow int.
//
// Example:
//
//	AlignUp(1, 8)       = 8
//	AlignUp(4096, 4096) = 4096
//	AlignUp(4097, 4096) = 8192
func AlignUp(n, a int) (int, bool) {
	if !IsPow2(a) || n < 0 {
		return 0, false
	}
	sum, ok := buf.AddOverflowSafe(n, a-1)
	if !ok {
		return 0, false
	}
	return sum &^ (a - 1), true
}

// IsAligned reports whether addr is a multiple of a (a power of two).
func IsAligned(addr uintptr, a int) bool {
	if !IsPow2(a) {
		return false
	}
	return addr&uintptr(a-1) == 0
}

// BitmapWords returns the number of bitmap words needed for n blocks.
func BitmapWords(n int) int {
	if n <= 0 {
		return 0
	}
	return (n-1)/BitmapWordBits + 1
}

// BitmapBytes returns the encoded bitmap size for n blocks:
// ceil(n/32) * 4.
func BitmapBytes(n int) int {
	return BitmapWords(n) * BitmapWordBytes
}
