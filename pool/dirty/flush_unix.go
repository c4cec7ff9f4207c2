//go:build unix && !linux && !freebsd

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges flushes dirty ranges to disk.
//
// On macOS and the remaining BSDs, msync() wants the address mmap() returned,
// so the whole mapping is synced. The kernel only writes pages that are dirty.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return unix.Msync(data, unix.MS_SYNC)
}
