package pool

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/blockpool/internal/format"
	"github.com/joshuapare/blockpool/internal/mmfile"
)

// newTestRegion returns a zeroed heap region whose first byte is aligned to align.
func newTestRegion(t testing.TB, size, align int) []byte {
	t.Helper()
	region, err := mmfile.Aligned(size, align)
	require.NoError(t, err)
	return region
}

// newSmallPool builds a pool of exactly n 64-byte blocks (n <= 32): a 64-byte
// descriptor, a one-word bitmap padded to 128, then the blocks.
func newSmallPool(t testing.TB, n int) (*Pool, []byte) {
	t.Helper()
	region := newTestRegion(t, 128+n*64, 64)
	p, err := Init(region, 64, 64, nil)
	require.NoError(t, err)
	require.Equal(t, n, p.BlockCount())
	return p, region
}

// metadata returns a copy of the descriptor and bitmap bytes.
func metadata(p *Pool) []byte {
	return bytes.Clone(p.r.data[:p.r.layout.BlocksOffset])
}

// requireInvariants checks every accounting invariant of the pool.
func requireInvariants(t testing.TB, p *Pool) {
	t.Helper()
	require.NoError(t, p.Check())
	require.Equal(t, p.BlockCount()-p.r.bits.CountSet(), p.FreeCount())
	require.GreaterOrEqual(t, p.Cursor(), 0)
	require.Less(t, p.Cursor(), p.BlockCount())
	require.Equal(t, format.PoolTag, p.r.tag())
}

// allocAll allocates until exhaustion and returns the addresses in order.
func allocAll(t testing.TB, p *Pool) []Addr {
	t.Helper()
	var addrs []Addr
	for {
		a, ok := p.Alloc()
		if !ok {
			return addrs
		}
		addrs = append(addrs, a)
	}
}

func mustIndex(t testing.TB, p *Pool, a Addr) int {
	t.Helper()
	i, err := p.Index(a)
	require.NoError(t, err)
	return i
}

// recordingTracker records every dirty range reported by the pool.
type recordingTracker struct {
	ranges [][2]int
}

func (r *recordingTracker) Add(off, length int) {
	r.ranges = append(r.ranges, [2]int{off, length})
}

func (r *recordingTracker) covers(off, length int) bool {
	for _, rg := range r.ranges {
		if rg[0] <= off && off+length <= rg[0]+rg[1] {
			return true
		}
	}
	return false
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var out bytes.Buffer
	return slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug})), &out
}
