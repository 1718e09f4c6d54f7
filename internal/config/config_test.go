package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/tsuri/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.PriorWeight, convey.ShouldEqual, 10)
			convey.So(cfg.PriorMean, convey.ShouldEqual, 3.8)
			convey.So(cfg.TopN, convey.ShouldEqual, 10)
			convey.So(cfg.NearRadiusKm, convey.ShouldEqual, 30)
			convey.So(cfg.MaxRadiusKm, convey.ShouldEqual, 100)
			convey.So(cfg.MaxBonus, convey.ShouldEqual, 20)
			convey.So(cfg.SearchPerCategory, convey.ShouldEqual, 5)
			convey.So(cfg.SearchTotal, convey.ShouldEqual, 15)
			convey.So(cfg.IDTieBreak, convey.ShouldBeFalse)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsPrefix, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then durations are derived from milliseconds", func() {
			convey.So(cfg.DebounceDelay(), convey.ShouldEqual, 300*time.Millisecond)
			convey.So(cfg.GeolocationTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.MetricsRefresh(), convey.ShouldEqual, 10*time.Second)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad value each", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"negative prior weight", func(c *config.Config) { c.PriorWeight = -1 }},
			{"zero prior weight", func(c *config.Config) { c.PriorWeight = 0 }},
			{"prior mean above five", func(c *config.Config) { c.PriorMean = 5.5 }},
			{"zero top n", func(c *config.Config) { c.TopN = 0 }},
			{"inverted radii", func(c *config.Config) { c.NearRadiusKm = 120 }},
			{"negative bonus", func(c *config.Config) { c.MaxBonus = -5 }},
			{"negative debounce", func(c *config.Config) { c.DebounceMS = -1 }},
			{"zero debounce", func(c *config.Config) { c.DebounceMS = 0 }},
			{"zero search total", func(c *config.Config) { c.SearchTotal = 0 }},
			{"zero geolocation timeout", func(c *config.Config) { c.GeolocationTimeoutMS = 0 }},
			{"zero metrics refresh", func(c *config.Config) { c.MetricsRefreshMS = 0 }},
			{"bad metrics prefix", func(c *config.Config) { c.MetricsPrefix = "9-lives" }},
			{"bad metrics label", func(c *config.Config) { c.MetricsLabels = map[string]string{"the env": "x"} }},
			{"reserved metrics label", func(c *config.Config) { c.MetricsLabels = map[string]string{"__env": "x"} }},
		}

		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" is rejected", func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
