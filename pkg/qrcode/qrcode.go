package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length in pixels used when no size is given.
const DefaultSize = 256

// Level is the error correction level of the code.
type Level = skipqrcode.RecoveryLevel

const (
	LevelLow     = skipqrcode.Low
	LevelMedium  = skipqrcode.Medium
	LevelHigh    = skipqrcode.High
	LevelHighest = skipqrcode.Highest
)

type options struct {
	size  int
	level Level
}

// Option configures encoding.
type Option func(*options)

// WithSize sets the image edge length. Non-positive values keep the default.
func WithSize(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.size = px
		}
	}
}

// WithLevel sets the error correction level.
func WithLevel(l Level) Option {
	return func(o *options) { o.level = l }
}

// Encode returns content as a PNG image.
func Encode(content string, opts ...Option) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	o := options{size: DefaultSize, level: LevelMedium}
	for _, opt := range opts {
		opt(&o)
	}

	png, err := skipqrcode.Encode(content, o.level, o.size)
	if err != nil {
		return nil, errors.Join(ErrEncodingFailed, err)
	}
	return png, nil
}

// DataURI returns content as a base64 PNG data URI.
func DataURI(content string, opts ...Option) (string, error) {
	png, err := Encode(content, opts...)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
