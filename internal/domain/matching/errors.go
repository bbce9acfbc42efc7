package matching

import "errors"

var ErrNotFound = errors.New("match not found")
