// Package filter holds the category tab predicates and the region filter
// applied before ranking.
package filter

import (
	"fmt"
	"strings"

	"github.com/okian/tsuri/internal/domain/model"
)

// Tab is a mutually exclusive category selection.
type Tab string

// Supported tabs.
const (
	TabAll      Tab = "all"
	TabBeginner Tab = "beginner"
	TabFamily   Tab = "family"
	TabNight    Tab = "night"
	TabPort     Tab = "port"
)

// Tabs lists every supported tab in display order.
var Tabs = []Tab{TabAll, TabBeginner, TabFamily, TabNight, TabPort}

// Label returns the display label of the tab.
func (t Tab) Label() string {
	switch t {
	case TabAll:
		return "総合"
	case TabBeginner:
		return "初心者におすすめ"
	case TabFamily:
		return "ファミリー向け"
	case TabNight:
		return "夜釣り"
	case TabPort:
		return "漁港・堤防"
	default:
		return string(t)
	}
}

// ParseTab maps a request value to a Tab. An empty value selects TabAll.
func ParseTab(s string) (Tab, error) {
	v := Tab(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return TabAll, nil
	}
	for _, t := range Tabs {
		if v == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// Predicate reports whether a spot belongs to a tab.
type Predicate func(*model.Spot) bool

// Predicate returns the membership test for the tab. Unknown tabs match
// nothing.
func (t Tab) Predicate() Predicate {
	switch t {
	case TabAll:
		return func(*model.Spot) bool { return true }
	case TabBeginner:
		return func(s *model.Spot) bool { return s.Difficulty == model.DifficultyBeginner }
	case TabFamily:
		return func(s *model.Spot) bool { return s.HasToilet && s.HasParking }
	case TabNight:
		return NightFishing
	case TabPort:
		return func(s *model.Spot) bool {
			return s.SpotType == model.SpotTypePort || s.SpotType == model.SpotTypePier
		}
	default:
		return func(*model.Spot) bool { return false }
	}
}

// NightFishing reports whether a night window is rated best or good.
func NightFishing(s *model.Spot) bool {
	for _, bt := range s.BestTimes {
		if bt.Label == model.NightLabel && (bt.Tier == model.TierBest || bt.Tier == model.TierGood) {
			return true
		}
	}
	return false
}

// Apply returns the spots matching the tab as a new slice, preserving order.
func (t Tab) Apply(spots []model.Spot) []model.Spot {
	return Where(spots, t.Predicate())
}

// Where returns the spots satisfying pred as a new slice, preserving order.
func Where(spots []model.Spot, pred Predicate) []model.Spot {
	out := make([]model.Spot, 0, len(spots))
	for i := range spots {
		if pred(&spots[i]) {
			out = append(out, spots[i])
		}
	}
	return out
}
