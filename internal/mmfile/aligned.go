// Package mmfile provides the memory backing for pool regions: memory-mapped
// files, anonymous mappings, and aligned heap buffers where mmap is not
// available.
package mmfile

import (
	"fmt"
	"os"
	"unsafe"
)

// PageSize is the OS page size, which is also the alignment of every
// mapping returned by this package.
var PageSize = os.Getpagesize()

// Aligned returns a zeroed heap slice of exactly size bytes whose first byte
// sits on an align boundary. align must be a power of two.
//
// The slice keeps its over-allocated backing array alive, so it is safe to
// hold only the returned slice.
func Aligned(size, align int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("mmfile: negative size %d", size)
	}
	if align <= 0 || align&(align-1) != 0 {
		return nil, fmt.Errorf("mmfile: alignment %d is not a power of two", align)
	}
	raw := make([]byte, size+align)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	off := int((uintptr(align) - addr&uintptr(align-1)) & uintptr(align-1))
	return raw[off : off+size : off+size], nil
}
