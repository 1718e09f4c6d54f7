package repository

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrLoadCatalog    = errors.New("load catalog failed")
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrNotLoaded      = errors.New("catalog not loaded")
)
