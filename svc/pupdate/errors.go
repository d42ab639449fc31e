package pupdate

import "errors"

var (
	ErrEmptyPhoto             = errors.New("pupdate: photo has no image data")
	ErrUnsupportedContentType = errors.New("pupdate: photo is not an image")
	ErrAnalysisFailed         = errors.New("pupdate: photo analysis failed")
)
