//go:build !unix

package dirty

import "context"

// flushRanges is a no-op without mmap: the region is a heap copy and the
// owner writes it back explicitly.
func (t *Tracker) flushRanges(ctx context.Context, _ []byte) error {
	return ctx.Err()
}
