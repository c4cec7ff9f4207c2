package format

import "errors"

var (
	// ErrSignatureMismatch indicates the descriptor did not carry PoolTag.
	ErrSignatureMismatch = errors.New("format: tag mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrUnsupported indicates a descriptor version this package cannot read.
	ErrUnsupported = errors.New("format: unsupported layout version")
	// ErrBadAlignment indicates an alignment that is zero, negative, or not a power of two.
	ErrBadAlignment = errors.New("format: alignment must be a power of two")
)
