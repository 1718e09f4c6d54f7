package probe

import "time"

// HTTP status code constants.
const (
	StatusOK         = 200
	StatusBadRequest = 400
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Default response bounds.
const (
	DefaultMaxSpots       = 10
	DefaultMaxResults     = 15
	DefaultMaxPerCategory = 5
	DefaultMaxRadiusKm    = 100.0
)

// Runner configuration constants.
const (
	DefaultSearchRatio   = 0.4
	DefaultDebounce      = 300 * time.Millisecond
	PercentageMultiplier = 100
)

// Bounding box used for random near-me origins, roughly the Japanese
// archipelago.
const (
	minLat = 31.0
	maxLat = 45.5
	minLng = 129.5
	maxLng = 145.8
)

// Total comparisons tolerate float rounding in the JSON encoding.
const totalEpsilon = 1e-9
