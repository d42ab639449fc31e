package trail

import "errors"

var (
	ErrNilStore        = errors.New("trail: store is nil")
	ErrEmptyKey        = errors.New("trail: key is empty")
	ErrInvalidCapacity = errors.New("trail: capacity must be at least 1")
	ErrAppendFailed    = errors.New("trail: append failed")
	ErrReadFailed      = errors.New("trail: read failed")
	ErrInvalidConfig   = errors.New("trail: invalid store configuration")
	ErrCorruptObject   = errors.New("trail: stored object is not a list of lines")
)
