package replay

import "errors"

// ErrRunNotFound is returned when the requested run ID doesn't exist.
var ErrRunNotFound = errors.New("run not found")
