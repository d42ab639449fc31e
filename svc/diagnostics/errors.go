package diagnostics

import "errors"

var ErrInvalidQuery = errors.New("diagnostics: invalid query")
