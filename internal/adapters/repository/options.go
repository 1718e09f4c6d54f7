package repository

import "github.com/okian/tsuri/pkg/logger"

// Option applies a configuration option to the CatalogStore.
type Option func(*CatalogStore)

// WithPath loads the catalog from a YAML file instead of the embedded one.
func WithPath(path string) Option {
	return func(s *CatalogStore) {
		s.path = path
	}
}

// WithCatalog publishes c instead of loading any YAML.
func WithCatalog(c Catalog) Option {
	return func(s *CatalogStore) {
		s.initial = &c
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *CatalogStore) {
		if l != nil {
			s.log = l
		}
	}
}
