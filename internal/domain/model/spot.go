// Package model contains domain models passed between layers.
package model

// Difficulty grades how hard a spot is to reach and fish.
type Difficulty string

// Difficulty tiers.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Tier rates how productive a time window is at a spot.
type Tier string

// Time window tiers.
const (
	TierBest Tier = "best"
	TierGood Tier = "good"
	TierFair Tier = "fair"
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierBest, TierGood, TierFair:
		return true
	}
	return false
}

// Spot types referenced by filters. SpotType is open-ended; these are the
// values the ranking engine cares about.
const (
	SpotTypePort  = "port"
	SpotTypePier  = "pier"
	SpotTypeBeach = "beach"
	SpotTypeRocky = "rocky"
	SpotTypeRiver = "river"
	SpotTypeLake  = "lake"
)

// Label used by best-time windows for after-dark fishing.
const NightLabel = "night"

// BestTime is one recommended time window for a spot.
type BestTime struct {
	Label string
	Tier  Tier
}

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Valid reports whether the coordinate lies within WGS84 bounds.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Spot is a read-only fishing spot record consumed by the ranking engine.
type Spot struct {
	ID          string
	Name        string
	Slug        string
	Location    Coordinate
	Rating      float64 // 0.0 - 5.0
	ReviewCount int
	FishCount   int // distinct catchable species

	HasParking   bool
	HasToilet    bool
	HasRentalRod bool
	IsFree       bool

	Difficulty Difficulty
	BestTimes  []BestTime
	SpotType   string
	Region     string // prefecture-level area, e.g. "Kanagawa Prefecture"
	City       string
}
