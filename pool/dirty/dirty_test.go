package dirty

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var page = os.Getpagesize()

func newTestTracker(t *testing.T, pages int) *Tracker {
	t.Helper()
	return NewTracker(make([]byte, pages*page))
}

func TestTracker_PageAlignment(t *testing.T) {
	tracker := newTestTracker(t, 4)

	tracker.Add(100, 200)

	coalesced := tracker.Coalesced()
	require.Len(t, coalesced, 1)
	assert.Equal(t, int64(0), coalesced[0].Off)
	assert.Equal(t, int64(page), coalesced[0].Len)
}

func TestTracker_CoalesceAdjacentAndOverlapping(t *testing.T) {
	tracker := newTestTracker(t, 8)

	tracker.Add(page, page)     // page 1
	tracker.Add(2*page, page)   // page 2, adjacent
	tracker.Add(2*page+10, 100) // inside page 2
	tracker.Add(5*page+1, 1)    // page 5, separate

	coalesced := tracker.Coalesced()
	require.Len(t, coalesced, 2)
	assert.Equal(t, Range{Off: int64(page), Len: int64(2 * page)}, coalesced[0])
	assert.Equal(t, Range{Off: int64(5 * page), Len: int64(page)}, coalesced[1])
}

func TestTracker_SortsOutOfOrderRanges(t *testing.T) {
	tracker := newTestTracker(t, 8)
	tracker.Add(6*page, 1)
	tracker.Add(0, 1)
	tracker.Add(3*page, 1)

	coalesced := tracker.Coalesced()
	require.Len(t, coalesced, 3)
	assert.Equal(t, int64(0), coalesced[0].Off)
	assert.Equal(t, int64(3*page), coalesced[1].Off)
	assert.Equal(t, int64(6*page), coalesced[2].Off)
}

func TestTracker_ClipsToMapping(t *testing.T) {
	tracker := NewTracker(make([]byte, page+100))
	tracker.Add(page+50, 10)
	tracker.Add(10*page, 10) // entirely outside

	coalesced := tracker.Coalesced()
	require.Len(t, coalesced, 1)
	assert.Equal(t, Range{Off: int64(page), Len: 100}, coalesced[0])
}

func TestTracker_IgnoresEmptyRanges(t *testing.T) {
	tracker := newTestTracker(t, 1)
	tracker.Add(0, 0)
	tracker.Add(-1, 10)
	assert.Zero(t, tracker.Len())
	assert.Nil(t, tracker.Coalesced())
}

func TestTracker_RangesReturnsCopy(t *testing.T) {
	tracker := newTestTracker(t, 1)
	tracker.Add(8, 4)

	r := tracker.Ranges()
	r[0].Off = 999
	assert.Equal(t, int64(8), tracker.Ranges()[0].Off)

	tracker.Reset()
	assert.Zero(t, tracker.Len())
}

func TestTracker_Flush_EmptyWithCancelled(t *testing.T) {
	tracker := newTestTracker(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Nothing tracked: early return before the context is consulted.
	require.NoError(t, tracker.Flush(ctx))
}

func TestTracker_Flush_PreCancelledKeepsRanges(t *testing.T) {
	tracker := newTestTracker(t, 2)
	tracker.Add(0, 64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tracker.Flush(ctx)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled), "expected context.Canceled, got: %v", err)
	assert.Equal(t, 1, tracker.Len(), "ranges must survive a cancelled flush")
}
