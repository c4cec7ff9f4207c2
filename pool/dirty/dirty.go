// Package dirty tracks which byte ranges of a memory-mapped pool region have
// been modified and flushes them to disk.
//
// The tracker maintains a list of dirty byte ranges, coalesces them into
// page-aligned ranges, and flushes them using platform-specific system calls
// (msync on Unix). The pool reports every descriptor and bitmap write through
// the DirtyTracker interface; callers may also record writes they make into
// block payloads.
package dirty

import (
	"context"
	"os"
	"sort"
)

// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
const defaultRangeCapacity = 64

// DirtyTracker is the minimal interface for components that only need to
// report modified regions, such as the pool itself.
type DirtyTracker interface {
	// Add marks a byte range as dirty.
	// off is the offset from the start of the region, length is the number of bytes.
	Add(off, length int)
}

// Range represents a dirty byte range (offsets relative to the mapping start).
type Range struct {
	Off int64
	Len int64
}

// Tracker accumulates dirty ranges and flushes them efficiently.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	data     []byte
	ranges   []Range // Dirty ranges (coalesced at flush time)
	pageSize int64
}

var _ DirtyTracker = (*Tracker)(nil)

// NewTracker creates a dirty tracker for data, which must start on a page
// boundary (any mapping returned by mmap does).
func NewTracker(data []byte) *Tracker {
	return &Tracker{
		data:     data,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: int64(os.Getpagesize()),
	}
}

// Add records a dirty range. Empty and negative ranges are ignored.
func (t *Tracker) Add(off, length int) {
	if off < 0 || length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// Len returns the number of raw (uncoalesced) ranges recorded since the last
// flush or reset.
func (t *Tracker) Len() int { return len(t.ranges) }

// Flush flushes all dirty ranges and clears them.
//
// The context is checked before each range is flushed. If cancelled midway,
// some ranges may already be on disk; the tracked ranges are kept so a later
// Flush retries all of them.
func (t *Tracker) Flush(ctx context.Context) error {
	if len(t.ranges) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(t.data) == 0 {
		t.Reset()
		return nil
	}
	if err := t.flushRanges(ctx, t.data); err != nil {
		return err
	}
	t.Reset()
	return nil
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// Ranges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) Ranges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// Coalesced returns the page-aligned, sorted, merged ranges that Flush would
// write, clipped to the mapping.
func (t *Tracker) Coalesced() []Range {
	return t.coalesce()
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping/adjacent ranges.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	limit := int64(len(t.data))
	aligned := make([]Range, 0, len(t.ranges))
	for _, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize

		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}
		if end > limit {
			end = limit
		}
		if start >= end {
			continue
		}
		aligned = append(aligned, Range{Off: start, Len: end - start})
	}
	if len(aligned) == 0 {
		return nil
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			end := max(current.Off+current.Len, next.Off+next.Len)
			current.Len = end - current.Off
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
