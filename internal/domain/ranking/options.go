package ranking

import (
	"github.com/okian/tsuri/internal/domain/geo"
	"github.com/okian/tsuri/internal/domain/scoring"
)

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithScorer sets the spot scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(r *Ranker) {
		if s != nil {
			r.scorer = s
		}
	}
}

// WithProximity sets the distance-decay parameters for near-me mode.
func WithProximity(p *geo.Proximity) Option {
	return func(r *Ranker) {
		if p != nil {
			r.proximity = p
		}
	}
}

// WithTopN sets how many spots a ranking returns.
func WithTopN(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.topN = n
		}
	}
}

// WithIDTieBreak orders equal totals by ascending spot id instead of input
// order.
func WithIDTieBreak(enabled bool) Option {
	return func(r *Ranker) {
		r.idTieBreak = enabled
	}
}
