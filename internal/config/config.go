// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New(); Load layers a YAML file and env vars on top.
// - Validation errors wrap ErrInvalidConfig, load failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// metricName matches the legacy Prometheus name charset used for the metric
// prefix and constant label names.
var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogJSON switches the log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// CatalogPath points at a YAML catalog. Empty uses the embedded catalog.
	CatalogPath string `koanf:"catalog_path"`

	// CatalogWatch reloads CatalogPath when the file changes.
	CatalogWatch bool `koanf:"catalog_watch"`

	// PriorWeight and PriorMean parameterize the Bayesian rating prior.
	PriorWeight float64 `koanf:"prior_weight"`
	PriorMean   float64 `koanf:"prior_mean"`

	// TopN caps the ranked list.
	TopN int `koanf:"top_n"`

	// NearRadiusKm, MaxRadiusKm and MaxBonus shape the near-me distance bonus.
	NearRadiusKm float64 `koanf:"near_radius_km"`
	MaxRadiusKm  float64 `koanf:"max_radius_km"`
	MaxBonus     float64 `koanf:"max_bonus"`

	// IDTieBreak orders equal totals by spot id instead of input order.
	IDTieBreak bool `koanf:"id_tie_break"`

	// DebounceMS is the search quiet period.
	DebounceMS int `koanf:"debounce_ms"`

	// SearchPerCategory and SearchTotal cap grouped search results.
	SearchPerCategory int `koanf:"search_per_category"`
	SearchTotal       int `koanf:"search_total"`

	// GeolocationTimeoutMS bounds a location request.
	GeolocationTimeoutMS int `koanf:"geolocation_timeout_ms"`

	// MetricsEnabled turns Prometheus export on /healthz off when false.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsPrefix is prepended to every metric name after the namespace.
	MetricsPrefix string `koanf:"metrics_prefix"`

	// MetricsLabels are constant labels attached to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsRefreshMS is the system collector sampling period.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		PriorWeight:          10,
		PriorMean:            3.8,
		TopN:                 10,
		NearRadiusKm:         30,
		MaxRadiusKm:          100,
		MaxBonus:             20,
		DebounceMS:           300,
		SearchPerCategory:    5,
		SearchTotal:          15,
		GeolocationTimeoutMS: 10_000,
		MetricsEnabled:       true,
		MetricsRefreshMS:     10_000,
	}
}

// DebounceDelay returns DebounceMS as a duration.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// GeolocationTimeout returns GeolocationTimeoutMS as a duration.
func (c *Config) GeolocationTimeout() time.Duration {
	return time.Duration(c.GeolocationTimeoutMS) * time.Millisecond
}

// MetricsRefresh returns MetricsRefreshMS as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}

// Validate checks values the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PriorWeight <= 0:
		return fmt.Errorf("%w: prior_weight must be positive", ErrInvalidConfig)
	case c.PriorMean < 0 || c.PriorMean > 5:
		return fmt.Errorf("%w: prior_mean must be within [0, 5]", ErrInvalidConfig)
	case c.TopN <= 0:
		return fmt.Errorf("%w: top_n must be positive", ErrInvalidConfig)
	case c.NearRadiusKm < 0 || c.MaxRadiusKm <= c.NearRadiusKm:
		return fmt.Errorf("%w: need 0 <= near_radius_km < max_radius_km", ErrInvalidConfig)
	case c.MaxBonus < 0:
		return fmt.Errorf("%w: max_bonus must not be negative", ErrInvalidConfig)
	case c.DebounceMS <= 0:
		return fmt.Errorf("%w: debounce_ms must be positive", ErrInvalidConfig)
	case c.SearchPerCategory <= 0 || c.SearchTotal <= 0:
		return fmt.Errorf("%w: search limits must be positive", ErrInvalidConfig)
	case c.GeolocationTimeoutMS <= 0:
		return fmt.Errorf("%w: geolocation_timeout_ms must be positive", ErrInvalidConfig)
	case c.MetricsRefreshMS <= 0:
		return fmt.Errorf("%w: metrics_refresh_ms must be positive", ErrInvalidConfig)
	case c.MetricsPrefix != "" && !metricName.MatchString(c.MetricsPrefix):
		return fmt.Errorf("%w: metrics_prefix %q is not a valid metric name", ErrInvalidConfig, c.MetricsPrefix)
	}
	for name := range c.MetricsLabels {
		if !metricName.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: metrics_labels key %q is not a valid label name", ErrInvalidConfig, name)
		}
	}
	return nil
}
