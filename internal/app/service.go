// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	repository "github.com/okian/tsuri/internal/adapters/repository"
	"github.com/okian/tsuri/internal/domain/debounce"
	"github.com/okian/tsuri/internal/domain/filter"
	"github.com/okian/tsuri/internal/domain/geo"
	"github.com/okian/tsuri/internal/domain/geolocate"
	"github.com/okian/tsuri/internal/domain/model"
	"github.com/okian/tsuri/internal/domain/overlay"
	"github.com/okian/tsuri/internal/domain/ranking"
	"github.com/okian/tsuri/internal/domain/scoring"
	"github.com/okian/tsuri/internal/domain/search"
	"github.com/okian/tsuri/internal/domain/types"
	"github.com/okian/tsuri/pkg/logger"
	"github.com/okian/tsuri/pkg/metrics"
)

// RankRequest is one ranking query. Origin is used only when NearMe is set;
// NearMe without an origin ranks in standard mode.
type RankRequest struct {
	Tab    string
	Region string
	NearMe bool
	Origin *model.Coordinate
}

// Service serves rankings and searches over the current catalog.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	ranker *ranking.Ranker
	index  atomic.Pointer[search.Index]

	// Configuration
	catalogPath string
	watch       bool
	priorWeight float64
	priorMean   float64
	topN        int
	nearKm      float64
	maxKm       float64
	maxBonus    float64
	idTieBreak  bool
	perCategory int
	searchTotal int
	debounce    time.Duration
	geoTimeout  time.Duration

	// State
	started     bool
	subscribed  bool
	cancelWatch context.CancelFunc
	rankCount   atomic.Uint64
	searchCount atomic.Uint64

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		priorWeight: scoring.DefaultPriorWeight,
		priorMean:   scoring.DefaultPriorMean,
		topN:        ranking.DefaultTopN,
		nearKm:      geo.DefaultNearRadiusKm,
		maxKm:       geo.DefaultMaxRadiusKm,
		maxBonus:    geo.DefaultMaxBonus,
		perCategory: search.DefaultPerCategory,
		searchTotal: search.DefaultTotal,
		debounce:    debounce.DefaultDelay,
		geoTimeout:  geolocate.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.ranker = ranking.New(
		ranking.WithScorer(scoring.New(scoring.WithPrior(s.priorWeight, s.priorMean))),
		ranking.WithProximity(geo.NewProximity(
			geo.WithRadii(s.nearKm, s.maxKm),
			geo.WithMaxBonus(s.maxBonus),
		)),
		ranking.WithTopN(s.topN),
		ranking.WithIDTieBreak(s.idTieBreak),
	)
	return s
}

// Start opens the catalog, if no store was given, and builds the search index.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting tsuri service...")

	if s.store == nil {
		cs, err := repository.NewCatalogStore(ctx,
			repository.WithPath(s.catalogPath),
			repository.WithLogger(s.logger.Named("repository")),
		)
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		s.store = cs
	}

	if n, ok := s.store.(interface{ OnReload(func(*repository.Snapshot)) }); ok && !s.subscribed {
		n.OnReload(func(snap *repository.Snapshot) {
			s.buildIndex(context.Background(), snap.Catalog.Sources())
		})
		s.subscribed = true
	}
	src, err := s.store.Corpus(ctx)
	if err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}
	s.buildIndex(ctx, src)

	if w, ok := s.store.(interface{ Watch(context.Context) error }); ok && s.watch {
		wctx, cancel := context.WithCancel(context.Background())
		if err := w.Watch(wctx); err != nil {
			cancel()
			s.logger.Warn(ctx, "catalog watch unavailable", logger.Error(err))
		} else {
			s.cancelWatch = cancel
		}
	}

	s.started = true
	counts := s.store.Counts(ctx)
	s.logger.Info(ctx, "tsuri service started",
		logger.Int("spots", counts.Spots),
		logger.Int("indexed", s.index.Load().Len()),
		logger.Int("topN", s.topN),
		logger.Bool("idTieBreak", s.idTieBreak),
	)
	return nil
}

// Stop releases background resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping tsuri service...")

	if s.cancelWatch != nil {
		s.cancelWatch()
		s.cancelWatch = nil
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "tsuri service stopped")
}

// Reload re-reads the catalog source and republishes it.
func (s *Service) Reload(ctx context.Context) error {
	r, ok := s.store.(interface{ ReloadSource(context.Context) error })
	if !ok {
		return ErrReload
	}
	return r.ReloadSource(ctx)
}

func (s *Service) buildIndex(ctx context.Context, src search.Sources) {
	start := time.Now()
	ix := search.Build(src, search.WithLimits(s.perCategory, s.searchTotal))
	s.index.Store(ix)
	s.log().Debug(ctx, "search index built",
		logger.Int("items", ix.Len()),
		logger.Duration("took", time.Since(start)),
	)
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Nop()
	}
	return s.logger
}

// Rank filters, scores and orders the current spots.
func (s *Service) Rank(ctx context.Context, req RankRequest) (types.RankResponse, error) {
	start := time.Now()

	tab, err := filter.ParseTab(req.Tab)
	if err != nil {
		return types.RankResponse{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if req.NearMe && req.Origin != nil && !req.Origin.Valid() {
		return types.RankResponse{}, fmt.Errorf("%w: %w", ErrInvalidRequest, geolocate.ErrInvalidCoordinate)
	}
	if s.index.Load() == nil {
		return types.RankResponse{}, ErrNotStarted
	}

	spots, err := s.store.Spots(ctx)
	if err != nil {
		return types.RankResponse{}, err
	}

	res := s.ranker.Rank(spots, ranking.Query{
		Tab:    tab,
		Region: req.Region,
		NearMe: req.NearMe,
		Origin: req.Origin,
	})
	s.rankCount.Add(1)

	took := time.Since(start)
	metrics.RecordRank(string(res.Tab), string(res.Mode), len(res.Spots), float64(took.Microseconds())/1000)
	s.log().Debug(ctx, "ranked spots",
		logger.String("tab", string(res.Tab)),
		logger.String("region", res.Region),
		logger.String("mode", string(res.Mode)),
		logger.Int("results", len(res.Spots)),
		logger.Duration("took", took),
	)
	return toRankResponse(res), nil
}

// Search answers a query against the current index.
func (s *Service) Search(ctx context.Context, query string) (types.SearchResponse, error) {
	g, err := s.searchGrouped(query)
	if err != nil {
		return types.SearchResponse{}, err
	}
	s.log().Debug(ctx, "search",
		logger.String("query", query),
		logger.Int("matches", g.Total),
	)
	return toSearchResponse(g), nil
}

func (s *Service) searchGrouped(query string) (search.Grouped, error) {
	ix := s.index.Load()
	if ix == nil {
		return search.Grouped{}, ErrNotStarted
	}
	start := time.Now()
	g := ix.Search(query)
	s.searchCount.Add(1)
	metrics.RecordSearch(g.Total, float64(time.Since(start).Microseconds())/1000)
	return g, nil
}

// indexSearcher adapts the service to debounce.Searcher.
type indexSearcher struct{ s *Service }

func (a indexSearcher) Search(query string) search.Grouped {
	g, _ := a.s.searchGrouped(query)
	return g
}

// SearchSession returns a search overlay backed by the service index and
// debounced with the configured quiet period.
func (s *Service) SearchSession(opts ...debounce.Option) *overlay.Overlay {
	opts = append([]debounce.Option{debounce.WithDelay(s.debounce)}, opts...)
	return overlay.New(debounce.New(indexSearcher{s: s}, opts...))
}

// Locate asks p for the user position within the configured timeout.
func (s *Service) Locate(ctx context.Context, p geolocate.Provider) geolocate.Outcome {
	out := geolocate.Acquire(ctx, p, s.geoTimeout)
	metrics.RecordGeolocation(out.Status.String())
	if !out.OK() {
		s.log().Info(ctx, "location unavailable",
			logger.String("status", out.Status.String()),
			logger.Error(out.Err),
		)
	}
	return out
}

// NearMe returns a near-me controller using p and the configured timeout.
func (s *Service) NearMe(p geolocate.Provider) *geolocate.NearMe {
	return geolocate.NewNearMe(p, s.geoTimeout)
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := types.Stats{
		Started:        s.started,
		RankRequests:   s.rankCount.Load(),
		SearchRequests: s.searchCount.Load(),
		Catalog:        map[string]int{},
	}
	if s.store == nil {
		return st
	}
	ctx := context.Background()
	c := s.store.Counts(ctx)
	st.Catalog = map[string]int{
		"spots":    c.Spots,
		"fish":     c.Fish,
		"guides":   c.Guides,
		"articles": c.Articles,
		"tools":    c.Tools,
	}
	if snap := s.store.Snapshot(); snap != nil {
		st.CatalogVersion = snap.Version
		st.CatalogLoadedAt = snap.LoadedAt.UTC().Format(time.RFC3339)
	}
	if ix := s.index.Load(); ix != nil {
		st.IndexedItems = ix.Len()
	}
	return st
}

func toRankResponse(res ranking.Result) types.RankResponse {
	out := types.RankResponse{
		Tab:      string(res.Tab),
		TabLabel: res.TabLabel,
		Region:   res.Region,
		Mode:     string(res.Mode),
		Empty:    res.Empty(),
		Spots:    make([]types.RankedSpot, len(res.Spots)),
	}
	for i, r := range res.Spots {
		out.Spots[i] = types.RankedSpot{
			Position:    r.Position,
			ID:          r.Spot.ID,
			Name:        r.Spot.Name,
			Slug:        r.Spot.Slug,
			Region:      r.Spot.Region,
			City:        r.Spot.City,
			SpotType:    r.Spot.SpotType,
			Difficulty:  string(r.Spot.Difficulty),
			Rating:      r.Spot.Rating,
			ReviewCount: r.Spot.ReviewCount,
			Score:       r.Score,
			Bonus:       r.Bonus,
			Total:       r.Total,
			DistanceKm:  r.DistanceKm,
			Breakdown: types.Breakdown{
				Quality:       r.Breakdown.Quality,
				Diversity:     r.Breakdown.Diversity,
				Facility:      r.Breakdown.Facility,
				Popularity:    r.Breakdown.Popularity,
				Accessibility: r.Breakdown.Accessibility,
			},
		}
	}
	return out
}

func toSearchResponse(g search.Grouped) types.SearchResponse {
	out := types.SearchResponse{
		Query:  g.Query,
		Total:  g.Total,
		Groups: make([]types.SearchGroup, len(g.Groups)),
	}
	for i, grp := range g.Groups {
		hits := make([]types.SearchHit, len(grp.Items))
		for j, it := range grp.Items {
			hits[j] = types.SearchHit{Name: it.DisplayName, Subtitle: it.Subtitle, Target: it.Target}
		}
		out.Groups[i] = types.SearchGroup{Category: string(grp.Category), Label: grp.Label, Items: hits}
	}
	return out
}
