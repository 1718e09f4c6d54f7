// Package ranking orders fishing spots by composite score, optionally
// re-ranked by proximity to the user.
package ranking

import (
	"sort"

	"github.com/okian/tsuri/internal/domain/filter"
	"github.com/okian/tsuri/internal/domain/geo"
	"github.com/okian/tsuri/internal/domain/model"
	"github.com/okian/tsuri/internal/domain/scoring"
)

// DefaultTopN is the number of spots returned by a ranking.
const DefaultTopN = 10

// Mode identifies how a ranking was computed.
type Mode string

// Ranking modes.
const (
	ModeStandard Mode = "standard"
	ModeNearMe   Mode = "near_me"
)

// Query is the immutable filter configuration of one ranking request.
// Origin is only consulted when NearMe is set.
type Query struct {
	Tab    filter.Tab
	Region string
	NearMe bool
	Origin *model.Coordinate
}

// Ranked is one ranked spot. Total equals Score plus Bonus; DistanceKm is
// set only in near-me mode.
type Ranked struct {
	Position   int
	Spot       model.Spot
	Score      float64
	Breakdown  scoring.Breakdown
	Bonus      float64
	Total      float64
	DistanceKm *float64
}

// Result is a ranking plus the labels of the filters that produced it.
type Result struct {
	Spots    []Ranked
	Tab      filter.Tab
	TabLabel string
	Region   string
	Mode     Mode
}

// Empty reports whether no spot qualified.
func (r Result) Empty() bool { return len(r.Spots) == 0 }

// Ranker computes rankings. It keeps no per-request state and is safe for
// concurrent use.
type Ranker struct {
	scorer     *scoring.Scorer
	proximity  *geo.Proximity
	topN       int
	idTieBreak bool
}

// New creates a Ranker with configuration options.
func New(opts ...Option) *Ranker {
	r := &Ranker{
		scorer:    scoring.New(),
		proximity: geo.NewProximity(),
		topN:      DefaultTopN,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank filters, scores and orders spots for q. The input slice is never
// modified.
func (r *Ranker) Rank(spots []model.Spot, q Query) Result {
	tab := q.Tab
	if tab == "" {
		tab = filter.TabAll
	}
	if q.NearMe && q.Origin != nil {
		return r.rankNear(spots, tab, *q.Origin)
	}
	return r.rankStandard(spots, tab, q.Region)
}

func (r *Ranker) rankStandard(spots []model.Spot, tab filter.Tab, region string) Result {
	candidates := tab.Apply(filter.ByRegion(spots, region))

	ranked := make([]Ranked, len(candidates))
	for i := range candidates {
		b := r.scorer.Breakdown(&candidates[i])
		score := b.Total()
		ranked[i] = Ranked{Spot: candidates[i], Score: score, Breakdown: b, Total: score}
	}

	if filter.IsNationwide(region) {
		region = filter.Nationwide
	}
	return Result{
		Spots:    r.order(ranked),
		Tab:      tab,
		TabLabel: tab.Label(),
		Region:   region,
		Mode:     ModeStandard,
	}
}

// rankNear ignores the region selection; proximity replaces it.
func (r *Ranker) rankNear(spots []model.Spot, tab filter.Tab, origin model.Coordinate) Result {
	candidates := tab.Apply(spots)

	ranked := make([]Ranked, 0, len(candidates))
	for i := range candidates {
		km := geo.Distance(origin, candidates[i].Location)
		if !r.proximity.Within(km) {
			continue
		}
		b := r.scorer.Breakdown(&candidates[i])
		score := b.Total()
		bonus := r.proximity.Bonus(km)
		dist := km
		ranked = append(ranked, Ranked{
			Spot:       candidates[i],
			Score:      score,
			Breakdown:  b,
			Bonus:      bonus,
			Total:      score + bonus,
			DistanceKm: &dist,
		})
	}

	return Result{
		Spots:    r.order(ranked),
		Tab:      tab,
		TabLabel: tab.Label(),
		Region:   filter.Nationwide,
		Mode:     ModeNearMe,
	}
}

// order sorts by Total descending (stable), truncates to topN and assigns
// 1-based positions.
func (r *Ranker) order(ranked []Ranked) []Ranked {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		if r.idTieBreak {
			return ranked[i].Spot.ID < ranked[j].Spot.ID
		}
		return false
	})
	if len(ranked) > r.topN {
		ranked = ranked[:r.topN]
	}
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}
