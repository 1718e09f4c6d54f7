package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/tsuri/internal/domain/debounce"
	"github.com/okian/tsuri/internal/domain/geolocate"
	"github.com/okian/tsuri/internal/domain/model"
	"github.com/okian/tsuri/internal/domain/overlay"
	"github.com/okian/tsuri/internal/domain/search"
	"github.com/okian/tsuri/internal/domain/types"
	"github.com/okian/tsuri/pkg/logger"
)

// SessionPhrases are typed one rune at a time by the search session.
var SessionPhrases = []string{"アジ", "くろだい", "本牧", "サビキ", "潮見"}

// remoteSearcher adapts the /search endpoint to debounce.Searcher and
// records which queries actually reached the service.
type remoteSearcher struct {
	ctx    context.Context //nolint:containedctx // debounce.Searcher has no ctx parameter
	client *HTTPClient
	limits Limits

	mu         sync.Mutex
	queries    []string
	violations []error
}

func (s *remoteSearcher) Search(query string) search.Grouped {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	res, err := s.client.Search(s.ctx, query, uuid.NewString())
	if err != nil {
		s.addViolation(fmt.Errorf("session search %q: %w", query, err))
		return search.Grouped{Query: query}
	}
	for _, v := range VerifySearch(res, s.limits) {
		s.addViolation(v)
	}
	return fromResponse(res)
}

func (s *remoteSearcher) addViolation(err error) {
	s.mu.Lock()
	s.violations = append(s.violations, err)
	s.mu.Unlock()
}

func (s *remoteSearcher) snapshot() ([]string, []error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...), append([]error(nil), s.violations...)
}

func fromResponse(res types.SearchResponse) search.Grouped {
	g := search.Grouped{Query: res.Query, Total: res.Total, Groups: make([]search.Group, len(res.Groups))}
	for i, grp := range res.Groups {
		items := make([]model.SearchItem, len(grp.Items))
		for j, h := range grp.Items {
			items[j] = model.SearchItem{
				Category:    model.Category(grp.Category),
				DisplayName: h.Name,
				Subtitle:    h.Subtitle,
				Target:      h.Target,
			}
		}
		g.Groups[i] = search.Group{Category: model.Category(grp.Category), Label: grp.Label, Items: items}
	}
	return g
}

// SessionResult summarizes one simulated overlay session.
type SessionResult struct {
	Phrase     string
	Queries    []string // queries that reached the service
	Target     string   // navigation target of the selected result
	Violations []error
}

// RunSearchSession opens the overlay with the keyboard shortcut, types
// phrase faster than the debounce delay, waits for the result and selects
// the first hit. Only the full phrase may reach the service.
func RunSearchSession(ctx context.Context, client *HTTPClient, cfg *Config, phrase string) SessionResult {
	rs := &remoteSearcher{ctx: ctx, client: client, limits: cfg.Limits}
	settled := make(chan debounce.State, 1)
	deb := debounce.New(rs,
		debounce.WithDelay(cfg.Debounce),
		debounce.WithOnSettle(func(st debounce.State) {
			select {
			case settled <- st:
			default:
			}
		}),
	)
	defer deb.Close()

	res := SessionResult{Phrase: phrase}
	o := overlay.New(deb)
	o.Shortcut(overlay.Key{Name: overlay.ShortcutKey, Ctrl: true})

	runes := []rune(phrase)
	for i := range runes {
		o.Type(string(runes[:i+1]))
		if err := sleep(ctx, cfg.Debounce/4); err != nil {
			res.Violations = append(res.Violations, err)
			return res
		}
	}

	var st debounce.State
	select {
	case st = <-settled:
	case <-time.After(cfg.Debounce + cfg.Timeout):
		res.Violations = append(res.Violations, fmt.Errorf("session %q: no result settled", phrase))
	case <-ctx.Done():
		res.Violations = append(res.Violations, ctx.Err())
		return res
	}

	if st.Searched && len(st.Result.Groups) > 0 {
		res.Target = o.Select(st.Result.Groups[0].Items[0])
		if v := o.View(); v.Open || v.Input != "" {
			res.Violations = append(res.Violations, fmt.Errorf("session %q: overlay not cleared after select", phrase))
		}
	} else {
		o.Escape()
	}

	res.Queries, res.Violations = collect(rs, res.Violations)
	if len(res.Queries) != 1 || res.Queries[0] != phrase {
		res.Violations = append(res.Violations, fmt.Errorf("session %q: service saw queries %q", phrase, res.Queries))
	}
	logger.Get().Debug(ctx, "search session",
		logger.String("phrase", phrase),
		logger.Int("queries", len(res.Queries)),
		logger.String("target", res.Target),
	)
	return res
}

func collect(rs *remoteSearcher, into []error) ([]string, []error) {
	q, v := rs.snapshot()
	return q, append(into, v...)
}

// NearMeResult summarizes one near-me toggle round trip.
type NearMeResult struct {
	Origin     model.Coordinate
	Spots      int
	Violations []error
}

// RunNearMeSession locates at a random origin, ranks near it, then turns
// near-me off and checks the ranking falls back to standard mode.
func RunNearMeSession(ctx context.Context, client *HTTPClient, cfg *Config) NearMeResult {
	lat, lng := RandomOrigin()
	res := NearMeResult{Origin: model.Coordinate{Latitude: lat, Longitude: lng}}
	nm := geolocate.NewNearMe(geolocate.StaticProvider{Coordinate: res.Origin}, cfg.Timeout)

	if out := nm.Request(ctx); !out.OK() {
		res.Violations = append(res.Violations, fmt.Errorf("near-me: locate failed: %s: %w", out.Status, out.Err))
		return res
	}
	st := nm.State()
	near, err := client.Rank(ctx, Request{ID: uuid.NewString(), Kind: KindRank, NearMe: st.Enabled, Lat: st.Origin.Latitude, Lng: st.Origin.Longitude})
	if err != nil {
		res.Violations = append(res.Violations, fmt.Errorf("near-me rank: %w", err))
		return res
	}
	res.Spots = len(near.Spots)
	if near.Mode != "near_me" {
		res.Violations = append(res.Violations, fmt.Errorf("near-me: mode %q", near.Mode))
	}
	res.Violations = append(res.Violations, VerifyRank(near, cfg.Limits)...)

	nm.Disable()
	st = nm.State()
	std, err := client.Rank(ctx, Request{ID: uuid.NewString(), Kind: KindRank, NearMe: st.Enabled})
	if err != nil {
		res.Violations = append(res.Violations, fmt.Errorf("standard rank: %w", err))
		return res
	}
	if std.Mode != "standard" || st.Origin != nil {
		res.Violations = append(res.Violations, fmt.Errorf("near-me: disable left mode %q", std.Mode))
	}
	return res
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
