package bitset

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSet(t *testing.T, n int) (Bitset, []byte) {
	t.Helper()
	storage := make([]byte, Bytes(n))
	b, err := New(storage, n)
	require.NoError(t, err)
	return b, storage
}

func TestNew_Sizing(t *testing.T) {
	_, err := New(make([]byte, 3), 1)
	require.Error(t, err, "one bit still needs a whole word")

	_, err = New(make([]byte, 8), -1)
	require.Error(t, err)

	b, err := New(make([]byte, 64), 33)
	require.NoError(t, err, "excess storage is allowed")
	assert.Equal(t, 33, b.Len())
}

// TestBitOrder pins the encoded layout: bit i is bit i%32 of little-endian word i/32.
func TestBitOrder(t *testing.T) {
	b, storage := newSet(t, 64)

	b.Set(0)
	b.Set(31)
	b.Set(32)
	b.Set(37)

	assert.Equal(t, uint32(0x80000001), binary.LittleEndian.Uint32(storage[0:]))
	assert.Equal(t, uint32(0x00000021), binary.LittleEndian.Uint32(storage[4:]))
	assert.Equal(t, byte(0x01), storage[0], "bit 0 is the low bit of byte 0")
	assert.Equal(t, 0, b.WordOffset(31))
	assert.Equal(t, 4, b.WordOffset(32))
}

func TestSetClearTest(t *testing.T) {
	b, _ := newSet(t, 100)

	for _, i := range []int{0, 5, 31, 32, 63, 99} {
		require.False(t, b.Test(i))
		b.Set(i)
		require.True(t, b.Test(i))
	}
	assert.Equal(t, 6, b.CountSet())

	b.Set(5) // idempotent
	assert.Equal(t, 6, b.CountSet())

	b.Clear(32)
	assert.False(t, b.Test(32))
	assert.Equal(t, 5, b.CountSet())

	b.Clear(32) // clearing a clear bit changes nothing
	assert.Equal(t, 5, b.CountSet())

	b.Reset()
	assert.Zero(t, b.CountSet())
}

func TestOutOfRangePanics(t *testing.T) {
	b, _ := newSet(t, 10)
	assert.Panics(t, func() { b.Test(10) })
	assert.Panics(t, func() { b.Set(-1) })
	assert.Panics(t, func() { b.Clear(32) })
}

func TestCountSet_IgnoresTailBits(t *testing.T) {
	b, storage := newSet(t, 3)
	binary.LittleEndian.PutUint32(storage, 0xFFFFFFFF)
	assert.Equal(t, 3, b.CountSet())
}

func TestFirstClear(t *testing.T) {
	b, _ := newSet(t, 70)
	for i := range 70 {
		b.Set(i)
	}

	_, ok := b.FirstClear(0, 70)
	require.False(t, ok, "full set")

	b.Clear(3)
	b.Clear(40)
	b.Clear(69)

	tests := []struct {
		name     string
		from, to int
		want     int
		ok       bool
	}{
		{"from zero", 0, 70, 3, true},
		{"skip first", 4, 70, 40, true},
		{"exact start", 40, 70, 40, true},
		{"last bit", 41, 70, 69, true},
		{"exclusive end", 41, 69, 0, false},
		{"wrap half", 0, 3, 0, false},
		{"empty range", 5, 5, 0, false},
		{"clamped", -10, 1000, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := b.FirstClear(tt.from, tt.to)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFirstClear_DoesNotReturnTailBits(t *testing.T) {
	b, _ := newSet(t, 5)
	for i := range 5 {
		b.Set(i)
	}
	_, ok := b.FirstClear(0, 32)
	assert.False(t, ok, "bits beyond Len must never be reported as clear")
}

func TestNextSet(t *testing.T) {
	b, _ := newSet(t, 96)
	b.Set(2)
	b.Set(64)
	b.Set(95)

	var got []int
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		got = append(got, i)
	}
	assert.Equal(t, []int{2, 64, 95}, got)

	_, ok := b.NextSet(96)
	assert.False(t, ok)
}

func BenchmarkFirstClear_MostlyFull(b *testing.B) {
	storage := make([]byte, Bytes(1<<16))
	set, _ := New(storage, 1<<16)
	for i := range 1 << 16 {
		set.Set(i)
	}
	set.Clear(1<<16 - 1)

	b.ResetTimer()
	for range b.N {
		if _, ok := set.FirstClear(0, set.Len()); !ok {
			b.Fatal("expected a clear bit")
		}
	}
}
