package filter

import (
	"strings"

	"github.com/okian/tsuri/internal/domain/model"
)

// Nationwide is the region value that bypasses region filtering.
const Nationwide = "nationwide"

var nationwideAliases = map[string]struct{}{
	"":           {},
	"nationwide": {},
	"all":        {},
	"全国":         {},
}

// Administrative suffixes stripped before comparing regions. Longer suffixes
// come first so "prefecture" wins over shorter overlaps.
var regionSuffixes = []string{
	" prefecture",
	"prefecture",
	" pref.",
	" pref",
	"-ken",
	"-fu",
	"-to",
	"都",
	"道",
	"府",
	"県",
}

// Names whose last character looks like a suffix but belongs to the name.
var wholeNames = map[string]struct{}{
	"北海道": {},
	"京都":  {},
}

// NormalizeRegion lower-cases a region and strips one trailing
// administrative suffix, so "Kanagawa Prefecture" and "Kanagawa" compare
// equal.
func NormalizeRegion(region string) string {
	r := strings.ToLower(strings.TrimSpace(region))
	if _, ok := wholeNames[r]; ok {
		return r
	}
	for _, suf := range regionSuffixes {
		if strings.HasSuffix(r, suf) && len(r) > len(suf) {
			return strings.TrimSpace(strings.TrimSuffix(r, suf))
		}
	}
	return r
}

// IsNationwide reports whether region disables region filtering.
func IsNationwide(region string) bool {
	_, ok := nationwideAliases[strings.ToLower(strings.TrimSpace(region))]
	return ok
}

// RegionMatches reports whether a stored region matches the selected one
// after suffix normalization.
func RegionMatches(stored, selected string) bool {
	if IsNationwide(selected) {
		return true
	}
	return NormalizeRegion(stored) == NormalizeRegion(selected)
}

// ByRegion returns the spots in the selected region as a new slice.
// A nationwide selection returns a copy of the full set.
func ByRegion(spots []model.Spot, selected string) []model.Spot {
	if IsNationwide(selected) {
		return append([]model.Spot(nil), spots...)
	}
	want := NormalizeRegion(selected)
	return Where(spots, func(s *model.Spot) bool {
		return NormalizeRegion(s.Region) == want
	})
}
