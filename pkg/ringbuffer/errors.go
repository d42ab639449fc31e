package ringbuffer

import "errors"

// ErrInvalidCapacity is returned by New for a capacity below 1.
var ErrInvalidCapacity = errors.New("ringbuffer: capacity must be at least 1")
