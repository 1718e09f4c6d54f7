package geolocate

import "errors"

// Sentinel error kinds returned by providers and the controller.
var (
	ErrDenied            = errors.New("location permission denied")
	ErrUnavailable       = errors.New("location unavailable")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrNoProvider        = errors.New("no location provider configured")
)
