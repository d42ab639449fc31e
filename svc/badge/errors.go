package badge

import "errors"

var (
	ErrEmptyOwner   = errors.New("badge: owner id is required")
	ErrUnknownBadge = errors.New("badge: unknown badge")
	ErrNotAwarded   = errors.New("badge: badge not awarded to owner")
)
