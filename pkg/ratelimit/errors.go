package ratelimit

import "errors"

var (
	ErrInvalidConfig     = errors.New("ratelimit: invalid configuration")
	ErrInvalidTokenCount = errors.New("ratelimit: invalid token count")
)
