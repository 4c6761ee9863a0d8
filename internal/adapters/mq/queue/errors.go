package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrFull   = errors.New("transaction queue full")
	ErrClosed = errors.New("transaction queue closed")
)
