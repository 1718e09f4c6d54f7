// Package probe drives a running tsuri service with randomized ranking and
// search traffic and checks every response against the service invariants.
package probe

import "time"

// Config holds configuration for a probe run
type Config struct {
	BaseURL     string        // Base URL of the service
	Requests    int           // Number of rank/search requests to generate
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	SearchRatio float64       // Share of generated requests that are searches
	Debounce    time.Duration // Quiet period of the simulated search session
	Limits      Limits        // Bounds every response is checked against
	LogFile     string        // Log file for probe output
	Verbose     bool          // Log every violation as it happens
}

// Limits are the response bounds the probe verifies.
type Limits struct {
	MaxSpots       int
	MaxResults     int
	MaxPerCategory int
	MaxRadiusKm    float64
}

// DefaultLimits match the service defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxSpots:       DefaultMaxSpots,
		MaxResults:     DefaultMaxResults,
		MaxPerCategory: DefaultMaxPerCategory,
		MaxRadiusKm:    DefaultMaxRadiusKm,
	}
}

// Kind tells rank and search requests apart.
type Kind string

// Request kinds.
const (
	KindRank   Kind = "rank"
	KindSearch Kind = "search"
)

// Request is one generated call against the service.
type Request struct {
	ID     string // sent as X-Request-ID
	Kind   Kind
	Tab    string
	Region string
	NearMe bool
	Lat    float64
	Lng    float64
	Query  string
}

// Stats holds probe statistics
type Stats struct {
	Generated      int
	Submitted      int
	Successful     int
	Rejected       int // 4xx answers to deliberately invalid requests
	Failed         int
	Violations     int
	RankRequests   int
	SearchRequests int
	NearMeResults  int
	EmptyResults   int
	SessionQueries int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
