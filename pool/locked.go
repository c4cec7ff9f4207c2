package pool

import "sync"

// Locked serializes every operation on a Pool behind a mutex, for callers
// that share one pool between goroutines. The wrapped Pool must not be used
// directly while the Locked is in use.
type Locked struct {
	mu sync.Mutex
	p  *Pool
}

// NewLocked wraps p.
func NewLocked(p *Pool) *Locked {
	return &Locked{p: p}
}

// Alloc is Pool.Alloc under the lock.
func (l *Locked) Alloc() (Addr, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Alloc()
}

// AllocBlock is Pool.AllocBlock under the lock.
func (l *Locked) AllocBlock() ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.AllocBlock()
}

// Free is Pool.Free under the lock.
func (l *Locked) Free(a Addr) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Free(a)
}

// FreeBlock is Pool.FreeBlock under the lock.
func (l *Locked) FreeBlock(b []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.FreeBlock(b)
}

// Stats is Pool.Stats under the lock.
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Stats()
}

// Check is Pool.Check under the lock.
func (l *Locked) Check() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Check()
}

// Do runs fn with exclusive access to the underlying pool, for sequences of
// operations that must not interleave with other goroutines.
func (l *Locked) Do(fn func(p *Pool) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.p)
}
