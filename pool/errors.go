package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates a bad alignment, a misaligned region, or an
	// address that does not name a block of the pool.
	ErrInvalidArgument = errors.New("pool: invalid argument")

	// ErrInsufficientMemory indicates the region cannot hold even one block
	// after the descriptor and bitmap are reserved.
	ErrInsufficientMemory = errors.New("pool: insufficient memory")

	// ErrDoubleFree indicates an attempt to free a block that is not allocated.
	// It wraps ErrInvalidArgument.
	ErrDoubleFree = fmt.Errorf("%w: block is not allocated", ErrInvalidArgument)

	// ErrCorrupt indicates the region descriptor or bitmap is inconsistent.
	ErrCorrupt = errors.New("pool: corrupt region")
)
