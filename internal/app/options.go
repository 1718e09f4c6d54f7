package service

import (
	"time"

	repository "github.com/okian/tsuri/internal/adapters/repository"
	"github.com/okian/tsuri/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore serves an existing store instead of opening the catalog.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCatalogPath loads the catalog from a YAML file. Empty keeps the embedded one.
func WithCatalogPath(path string) Option {
	return func(s *Service) {
		s.catalogPath = path
	}
}

// WithCatalogWatch reloads the catalog file when it changes.
func WithCatalogWatch(enabled bool) Option {
	return func(s *Service) {
		s.watch = enabled
	}
}

// WithPrior sets the Bayesian prior weight and mean.
func WithPrior(weight, mean float64) Option {
	return func(s *Service) {
		s.priorWeight = weight
		s.priorMean = mean
	}
}

// WithTopN caps the ranked list.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithProximity shapes the near-me bonus.
func WithProximity(nearKm, maxKm, maxBonus float64) Option {
	return func(s *Service) {
		s.nearKm = nearKm
		s.maxKm = maxKm
		s.maxBonus = maxBonus
	}
}

// WithIDTieBreak orders equal totals by spot id.
func WithIDTieBreak(enabled bool) Option {
	return func(s *Service) {
		s.idTieBreak = enabled
	}
}

// WithSearchLimits caps grouped search results.
func WithSearchLimits(perCategory, total int) Option {
	return func(s *Service) {
		if perCategory > 0 {
			s.perCategory = perCategory
		}
		if total > 0 {
			s.searchTotal = total
		}
	}
}

// WithDebounce sets the quiet period of search sessions.
func WithDebounce(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithGeolocationTimeout bounds location requests.
func WithGeolocationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.geoTimeout = d
		}
	}
}
