package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocked_ConcurrentChurn(t *testing.T) {
	region := newTestRegion(t, 128+32*64, 64)
	p, err := Init(region, 64, 64, nil)
	require.NoError(t, err)
	l := NewLocked(p)

	const workers = 8
	const rounds = 500

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			held := make([][]byte, 0, 4)
			for r := range rounds {
				if b, ok := l.AllocBlock(); ok {
					b[0] = byte(w)
					held = append(held, b)
				}
				if len(held) == cap(held) || r%3 == 0 {
					for _, b := range held {
						if b[0] != byte(w) {
							errs <- ErrCorrupt
							return
						}
						if err := l.FreeBlock(b); err != nil {
							errs <- err
							return
						}
					}
					held = held[:0]
				}
			}
			for _, b := range held {
				if err := l.FreeBlock(b); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.NoError(t, l.Check())
	s := l.Stats()
	require.Equal(t, s.BlockCount, s.FreeCount, "every block returned")
}

func TestLocked_Do(t *testing.T) {
	p, _ := newSmallPool(t, 4)
	l := NewLocked(p)

	a, ok := l.Alloc()
	require.True(t, ok)

	err := l.Do(func(p *Pool) error {
		if _, err := p.Index(a); err != nil {
			return err
		}
		return p.Free(a)
	})
	require.NoError(t, err)
	require.ErrorIs(t, l.Free(a), ErrDoubleFree)
	require.Equal(t, 4, l.Stats().FreeCount)
}
