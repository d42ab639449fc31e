package cloudsync

import "errors"

var (
	ErrConflict          = errors.New("cloudsync: remote record is newer")
	ErrRemoteUnavailable = errors.New("cloudsync: remote unavailable")
	ErrInvalidChange     = errors.New("cloudsync: invalid change")
	ErrNoRemote          = errors.New("cloudsync: remote is required")
)
