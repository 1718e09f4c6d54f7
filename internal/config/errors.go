package config

import "errors"

// Sentinel errors; match with errors.Is.
var (
	ErrInvalidConfig = errors.New("config: invalid")
	ErrLoadConfig    = errors.New("config: load failed")
)
