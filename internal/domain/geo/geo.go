// Package geo provides great-circle distance and the proximity bonus used by
// "near me" ranking.
package geo

import (
	"math"

	"github.com/okian/tsuri/internal/domain/model"
)

// Default proximity configuration constants.
const (
	EarthRadiusKm       = 6371.0
	DefaultNearRadiusKm = 30.0  // full bonus up to this distance
	DefaultMaxRadiusKm  = 100.0 // spots beyond this distance are dropped
	DefaultMaxBonus     = 20.0
)

// Distance returns the haversine distance between a and b in kilometres.
func Distance(a, b model.Coordinate) float64 {
	lat1 := degreesToRadians(a.Latitude)
	lat2 := degreesToRadians(b.Latitude)
	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLon := degreesToRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Option applies a configuration option to a Proximity.
type Option func(*Proximity)

// WithRadii sets the near (full bonus) and max (cutoff) radii in km.
func WithRadii(nearKm, maxKm float64) Option {
	return func(p *Proximity) {
		if nearKm >= 0 && maxKm > nearKm {
			p.nearKm = nearKm
			p.maxKm = maxKm
		}
	}
}

// WithMaxBonus sets the bonus awarded inside the near radius.
func WithMaxBonus(bonus float64) Option {
	return func(p *Proximity) {
		if bonus >= 0 {
			p.maxBonus = bonus
		}
	}
}

// Proximity holds the distance-decay parameters.
type Proximity struct {
	nearKm   float64
	maxKm    float64
	maxBonus float64
}

// NewProximity creates a Proximity with configuration options.
func NewProximity(opts ...Option) *Proximity {
	p := &Proximity{
		nearKm:   DefaultNearRadiusKm,
		maxKm:    DefaultMaxRadiusKm,
		maxBonus: DefaultMaxBonus,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxRadius returns the cutoff distance in km.
func (p *Proximity) MaxRadius() float64 { return p.maxKm }

// Within reports whether a spot at km is eligible for near-me ranking.
func (p *Proximity) Within(km float64) bool {
	return km <= p.maxKm
}

// Bonus is flat inside the near radius and decays linearly to zero at the
// max radius.
func (p *Proximity) Bonus(km float64) float64 {
	switch {
	case km <= p.nearKm:
		return p.maxBonus
	case km <= p.maxKm:
		return p.maxBonus * (1 - (km-p.nearKm)/(p.maxKm-p.nearKm))
	default:
		return 0
	}
}
