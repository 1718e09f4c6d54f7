// Package scoring computes the 100-point composite score of a fishing spot.
package scoring

import (
	"math"

	"github.com/okian/tsuri/internal/domain/model"
)

// Default scoring configuration constants.
const (
	DefaultPriorWeight = 10.0 // C: pseudo-reviews given to the prior
	DefaultPriorMean   = 3.8  // M: corpus-wide average rating

	maxRating = 5.0

	qualityMax           = 50.0
	diversityMax         = 15.0
	popularityMax        = 10.0
	diversitySaturation  = 8.0   // species count at which diversity saturates
	popularitySaturation = 200.0 // review count at which popularity saturates

	parkingPoints   = 4.0
	toiletPoints    = 4.0
	rentalRodPoints = 4.0
	freePoints      = 3.0

	beginnerPoints     = 10.0
	intermediatePoints = 5.0
	advancedPoints     = 2.0

	// MaxScore is the ceiling of Score.
	MaxScore = 100.0
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithPrior sets the Bayesian prior weight and mean.
func WithPrior(weight, mean float64) Option {
	return func(s *Scorer) {
		if weight > 0 {
			s.priorWeight = weight
		}
		if mean >= 0 && mean <= maxRating {
			s.priorMean = mean
		}
	}
}

// Breakdown holds the individual score terms.
type Breakdown struct {
	Quality       float64 `json:"quality"`
	Diversity     float64 `json:"diversity"`
	Facility      float64 `json:"facility"`
	Popularity    float64 `json:"popularity"`
	Accessibility float64 `json:"accessibility"`
}

// Total sums all terms.
func (b Breakdown) Total() float64 {
	return b.Quality + b.Diversity + b.Facility + b.Popularity + b.Accessibility
}

// Scorer computes spot scores. It holds only immutable configuration and is
// safe for concurrent use.
type Scorer struct {
	priorWeight float64
	priorMean   float64
}

// New creates a Scorer with configuration options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		priorWeight: DefaultPriorWeight,
		priorMean:   DefaultPriorMean,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PriorMean returns the configured prior mean.
func (s *Scorer) PriorMean() float64 { return s.priorMean }

// Score returns the composite score of a spot in [0, 100].
func (s *Scorer) Score(spot *model.Spot) float64 {
	return s.Breakdown(spot).Total()
}

// Breakdown returns every term of the composite score.
func (s *Scorer) Breakdown(spot *model.Spot) Breakdown {
	return Breakdown{
		Quality:       s.Quality(spot.Rating, spot.ReviewCount),
		Diversity:     Diversity(spot.FishCount),
		Facility:      Facility(spot),
		Popularity:    Popularity(spot.ReviewCount),
		Accessibility: Accessibility(spot.Difficulty),
	}
}

// Bayesian blends rating with the prior mean, weighted by review count.
func (s *Scorer) Bayesian(rating float64, reviews int) float64 {
	n := float64(reviews)
	return (n*rating + s.priorWeight*s.priorMean) / (n + s.priorWeight)
}

// Quality scales the Bayesian rating to at most 50 points.
func (s *Scorer) Quality(rating float64, reviews int) float64 {
	return s.Bayesian(rating, reviews) / maxRating * qualityMax
}

// Diversity awards up to 15 points, saturating at 8 species.
func Diversity(fishCount int) float64 {
	return math.Min(float64(fishCount)/diversitySaturation, 1) * diversityMax
}

// Facility sums fixed per-facility weights; all four give exactly 15.
func Facility(spot *model.Spot) float64 {
	var pts float64
	if spot.HasParking {
		pts += parkingPoints
	}
	if spot.HasToilet {
		pts += toiletPoints
	}
	if spot.HasRentalRod {
		pts += rentalRodPoints
	}
	if spot.IsFree {
		pts += freePoints
	}
	return pts
}

// Popularity awards up to 10 points, saturating at 200 reviews.
func Popularity(reviews int) float64 {
	return math.Min(float64(reviews)/popularitySaturation, 1) * popularityMax
}

// Accessibility maps the difficulty tier to points. Unknown tiers score 0.
func Accessibility(d model.Difficulty) float64 {
	switch d {
	case model.DifficultyBeginner:
		return beginnerPoints
	case model.DifficultyIntermediate:
		return intermediatePoints
	case model.DifficultyAdvanced:
		return advancedPoints
	default:
		return 0
	}
}
