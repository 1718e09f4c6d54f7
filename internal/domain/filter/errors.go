package filter

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownTab = errors.New("unknown category tab")
)
