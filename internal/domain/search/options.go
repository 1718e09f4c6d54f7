package search

// Default grouping limits.
const (
	DefaultPerCategory = 5
	DefaultTotal       = 15
)

// Option applies a configuration option to the Index.
type Option func(*Index)

// WithLimits sets the per-category and overall result caps.
func WithLimits(perCategory, total int) Option {
	return func(ix *Index) {
		if perCategory > 0 {
			ix.perCategory = perCategory
		}
		if total > 0 {
			ix.total = total
		}
	}
}
