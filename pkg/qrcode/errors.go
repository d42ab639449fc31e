package qrcode

import "errors"

var (
	ErrEmptyContent   = errors.New("qrcode: content cannot be empty")
	ErrEncodingFailed = errors.New("qrcode: failed to encode")
)
