package escalation

import "errors"

var (
	ErrInvalidPolicy = errors.New("escalation: invalid policy")
	ErrEmptyPolicy   = errors.New("escalation: policy has no terms")
)
