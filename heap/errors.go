package heap

import "errors"

// ErrRootOverflow indicates a push beyond the root stack's fixed bound.
var ErrRootOverflow = errors.New("root stack overflow")

// ErrRootUnderflow indicates a pop from an empty root stack.
var ErrRootUnderflow = errors.New("root stack underflow")

// ErrOutOfMemory indicates that an allocation could not be satisfied even
// after a collection. Under the fixed growth policy this means the live
// graph plus the pending allocation exceeds the configured capacity; the
// headroom policy only returns it through Restore when an image is larger
// than a fixed-size target.
var ErrOutOfMemory = errors.New("out of memory")
