package pool

import "fmt"

// AllocBlock allocates a block and returns it as a slice with length and
// capacity BlockSize. The slice aliases the region.
func (p *Pool) AllocBlock() ([]byte, bool) {
	i, ok := p.alloc()
	if !ok {
		return nil, false
	}
	return p.r.block(i), true
}

// FreeBlock frees the block whose first byte is b[0]. b must be a slice
// returned by AllocBlock or Block, or re-sliced from one without moving its start.
func (p *Pool) FreeBlock(b []byte) error {
	if len(b) == 0 {
		p.mustBeValid()
		return fmt.Errorf("empty block slice: %w", ErrInvalidArgument)
	}
	return p.Free(Addr(addrOfSlice(b)))
}

// Block returns the allocated block at a as a slice.
func (p *Pool) Block(a Addr) ([]byte, error) {
	i, err := p.r.index(a)
	if err != nil {
		return nil, err
	}
	if !p.r.bits.Test(i) {
		return nil, fmt.Errorf("block %d is not allocated: %w", i, ErrInvalidArgument)
	}
	return p.r.block(i), nil
}
