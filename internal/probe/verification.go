package probe

import (
	"fmt"

	"github.com/okian/tsuri/internal/domain/types"
)

// VerifyRank checks a ranking response against lim.
func VerifyRank(res types.RankResponse, lim Limits) []error {
	var errs []error
	if len(res.Spots) > lim.MaxSpots {
		errs = append(errs, fmt.Errorf("rank: %d spots exceed the cap of %d", len(res.Spots), lim.MaxSpots))
	}
	if res.Empty != (len(res.Spots) == 0) {
		errs = append(errs, fmt.Errorf("rank: empty=%v with %d spots", res.Empty, len(res.Spots)))
	}
	for i, s := range res.Spots {
		if s.Position != i+1 {
			errs = append(errs, fmt.Errorf("rank: spot %s at index %d has position %d", s.ID, i, s.Position))
		}
		if s.Score < 0 || s.Score > 100 {
			errs = append(errs, fmt.Errorf("rank: spot %s score %.3f outside [0,100]", s.ID, s.Score))
		}
		if i > 0 && s.Total > res.Spots[i-1].Total+totalEpsilon {
			errs = append(errs, fmt.Errorf("rank: total increases at position %d (%.3f > %.3f)", s.Position, s.Total, res.Spots[i-1].Total))
		}
		switch res.Mode {
		case "near_me":
			if s.DistanceKm == nil {
				errs = append(errs, fmt.Errorf("rank: near-me spot %s has no distance", s.ID))
			} else if *s.DistanceKm > lim.MaxRadiusKm {
				errs = append(errs, fmt.Errorf("rank: spot %s at %.1f km beyond %.0f km", s.ID, *s.DistanceKm, lim.MaxRadiusKm))
			}
		default:
			if s.Bonus != 0 {
				errs = append(errs, fmt.Errorf("rank: standard-mode spot %s has bonus %.3f", s.ID, s.Bonus))
			}
		}
	}
	return errs
}

// VerifySearch checks a search response against lim.
func VerifySearch(res types.SearchResponse, lim Limits) []error {
	var errs []error
	if res.Total > lim.MaxResults {
		errs = append(errs, fmt.Errorf("search %q: %d results exceed the cap of %d", res.Query, res.Total, lim.MaxResults))
	}
	n := 0
	seen := map[string]bool{}
	for _, g := range res.Groups {
		if seen[g.Category] {
			errs = append(errs, fmt.Errorf("search %q: category %s repeated", res.Query, g.Category))
		}
		seen[g.Category] = true
		if len(g.Items) == 0 {
			errs = append(errs, fmt.Errorf("search %q: empty group %s", res.Query, g.Category))
		}
		if len(g.Items) > lim.MaxPerCategory {
			errs = append(errs, fmt.Errorf("search %q: %d %s results exceed %d", res.Query, len(g.Items), g.Category, lim.MaxPerCategory))
		}
		n += len(g.Items)
	}
	if n != res.Total {
		errs = append(errs, fmt.Errorf("search %q: total %d but %d items", res.Query, res.Total, n))
	}
	if order := categoryOrder(res.Groups); order != nil {
		errs = append(errs, order)
	}
	return errs
}

var priority = map[string]int{"species": 0, "location": 1, "guide": 2, "article": 3, "tool": 4}

func categoryOrder(groups []types.SearchGroup) error {
	last := -1
	for _, g := range groups {
		p, ok := priority[g.Category]
		if !ok {
			return fmt.Errorf("search: unknown category %q", g.Category)
		}
		if p < last {
			return fmt.Errorf("search: category %s out of priority order", g.Category)
		}
		last = p
	}
	return nil
}
