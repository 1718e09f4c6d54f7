package model

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidSpot = errors.New("invalid spot")
	ErrInvalidItem = errors.New("invalid search item")
)
